package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrNoValidSamples is returned when a trace holds no samples to measure.
var ErrNoValidSamples = errors.New("no valid samples")

// Duration returns the time between the first and the last sample.
func Duration(time []float64) (float64, error) {
	if len(time) == 0 {
		return 0, ErrNoValidSamples
	}
	return time[len(time)-1] - time[0], nil
}

// VoltageExtremes returns the minimum and maximum voltage.
func VoltageExtremes(voltage []float64) (Extremes, error) {
	if len(voltage) == 0 {
		return Extremes{}, ErrNoValidSamples
	}
	return Extremes{floats.Min(voltage), floats.Max(voltage)}, nil
}

// Extremes is a (min, max) pair.
type Extremes [2]float64

func (e Extremes) Min() float64 { return e[0] }
func (e Extremes) Max() float64 { return e[1] }

// Metrics is the summary of one analysed recording. It is built once by
// Aggregate and cannot be changed afterwards.
type Metrics struct {
	duration  float64
	extremes  Extremes
	numBeats  int
	meanHRBPM float64
	beats     []float64
}

// Aggregate computes the metrics of a filtered trace and its detected beats.
func Aggregate(time, voltage, beats []float64) (Metrics, error) {
	duration, err := Duration(time)
	if err != nil {
		return Metrics{}, err
	}
	extremes, err := VoltageExtremes(voltage)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		duration:  duration,
		extremes:  extremes,
		numBeats:  len(beats),
		meanHRBPM: MeanHeartRate(beats),
		beats:     slices.Clone(beats),
	}, nil
}

func (m Metrics) Duration() float64 { return m.duration }

func (m Metrics) VoltageExtremes() Extremes { return m.extremes }

func (m Metrics) NumBeats() int { return m.numBeats }

// MeanHRBPM is NaN when fewer than two beats were detected.
func (m Metrics) MeanHRBPM() float64 { return m.meanHRBPM }

// Beats returns a copy of the beat timestamps.
func (m Metrics) Beats() []float64 { return slices.Clone(m.beats) }

type metricsJSON struct {
	Duration        *float64    `json:"duration"`
	VoltageExtremes [2]*float64 `json:"voltage_extremes"`
	NumBeats        int         `json:"num_beats"`
	MeanHRBPM       *float64    `json:"mean_hr_bpm"`
	Beats           []*float64  `json:"beats"`
}

// finite returns nil for NaN and ±Inf, which JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MarshalJSON writes every value that is not a finite number, such as an
// undefined mean heart rate, as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	out := metricsJSON{
		Duration:        finite(m.duration),
		VoltageExtremes: [2]*float64{finite(m.extremes[0]), finite(m.extremes[1])},
		NumBeats:        m.numBeats,
		MeanHRBPM:       finite(m.meanHRBPM),
		Beats:           make([]*float64, 0, len(m.beats)),
	}
	for _, b := range m.beats {
		out.Beats = append(out.Beats, finite(b))
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores metrics written by MarshalJSON. Nulls come back
// as NaN.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var in metricsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Metrics{
		duration:  orNaN(in.Duration),
		extremes:  Extremes{orNaN(in.VoltageExtremes[0]), orNaN(in.VoltageExtremes[1])},
		numBeats:  in.NumBeats,
		meanHRBPM: orNaN(in.MeanHRBPM),
	}
	if in.Beats != nil {
		m.beats = make([]float64, 0, len(in.Beats))
		for _, b := range in.Beats {
			m.beats = append(m.beats, orNaN(b))
		}
	}
	return nil
}
