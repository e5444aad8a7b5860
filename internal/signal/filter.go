package signal

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jfcg/butter"
)

var (
	// ErrSampleRate is returned when the trace does not allow deriving a
	// sample rate from its first two timestamps.
	ErrSampleRate = errors.New("cannot derive sample rate")

	// ErrBand is returned when the pass band cannot be realised at the
	// trace's sample rate.
	ErrBand = errors.New("invalid pass band")
)

// Filter turns a raw voltage sequence into a filtered one of equal length.
type Filter interface {
	Apply(time, voltage []float64) ([]float64, error)
}

// Identity returns a copy of the voltage unchanged.
type Identity struct{}

func (Identity) Apply(_, voltage []float64) ([]float64, error) {
	return slices.Clone(voltage), nil
}

// BandPass keeps the content between LowHz and HighHz. The signal is run
// forward and then backward through a first-order high-pass/low-pass
// cascade so the output has no phase lag.
type BandPass struct {
	LowHz  float64
	HighHz float64
}

func (b BandPass) Apply(time, voltage []float64) ([]float64, error) {
	fs, err := SampleRate(time)
	if err != nil {
		return nil, err
	}

	forward, err := b.pass(voltage, fs)
	if err != nil {
		return nil, err
	}
	slices.Reverse(forward)

	out, err := b.pass(forward, fs)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (b BandPass) pass(vals []float64, fs float64) ([]float64, error) {
	wcBase := 2.0 * math.Pi / fs

	high := butter.NewHighPass1(b.LowHz * wcBase)
	if high == nil {
		return nil, fmt.Errorf("%w: high-pass at %g Hz with fs=%g Hz (expect .0001 < wc < 3.1415, got %f)",
			ErrBand, b.LowHz, fs, b.LowHz*wcBase)
	}
	low := butter.NewLowPass1(b.HighHz * wcBase)
	if low == nil {
		return nil, fmt.Errorf("%w: low-pass at %g Hz with fs=%g Hz (expect .0001 < wc < 3.1415, got %f)",
			ErrBand, b.HighHz, fs, b.HighHz*wcBase)
	}

	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = high.Next(low.Next(v))
	}
	return out, nil
}

// SampleRate derives the sampling frequency from the spacing of the first
// two timestamps. Non-uniform traces only get an approximation.
func SampleRate(time []float64) (float64, error) {
	if len(time) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples, got %d", ErrSampleRate, len(time))
	}
	dt := time[1] - time[0]
	if dt <= 0 {
		return 0, fmt.Errorf("%w: non-positive spacing %g", ErrSampleRate, dt)
	}
	return 1 / dt, nil
}
