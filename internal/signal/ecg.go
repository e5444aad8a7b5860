package signal

import "math"

// ECGSim produces an ECG-like waveform (not clinical) sampled at fs Hz:
// baseline wander plus gaussian P, QRS and T waves plus a little noise.
type ECGSim struct {
	fs    float64
	hrBPM float64
	noise float64
	gain  float64
	phase float64
	n     int
}

// NewECGSim fs=250, hrBPM typically 60-120, noise ~0.0-0.05. The waveform
// peaks at about gain at each R wave.
func NewECGSim(fs, hrBPM, noise, gain float64) *ECGSim {
	return &ECGSim{fs: fs, hrBPM: hrBPM, noise: noise, gain: gain}
}

// Next returns the time and voltage of the next sample.
func (s *ECGSim) Next() (float64, float64) {
	t := float64(s.n) / s.fs
	s.n++

	// position within the current cycle, [0..1)
	p := s.phase
	s.phase += s.hrBPM / 60.0 / s.fs
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}

	baseline := 0.05 * math.Sin(2*math.Pi*0.33*t)

	pw := 0.08 * gauss(p, 0.18, 0.03)
	q := -0.12 * gauss(p, 0.30, 0.01)
	r := 1.00 * gauss(p, 0.32, 0.008)
	sw := -0.25 * gauss(p, 0.35, 0.012)
	tw := 0.25 * gauss(p, 0.60, 0.06)

	// deterministic pseudo-noise
	n := s.noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	return t, s.gain * (baseline + pw + q + r + sw + tw + n)
}

// RPeaks returns the times of the R waves NewECGSim places inside a
// recording of the given duration.
func (s *ECGSim) RPeaks(duration float64) []float64 {
	period := 60.0 / s.hrBPM
	var peaks []float64
	for t := 0.32 * period; t < duration; t += period {
		peaks = append(peaks, t)
	}
	return peaks
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
