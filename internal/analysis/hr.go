package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Rates converts consecutive beat spacings into instantaneous heart rates
// in beats per minute.
func Rates(beats []float64) []float64 {
	if len(beats) < 2 {
		return nil
	}
	rates := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		rates = append(rates, 60.0/(beats[i]-beats[i-1]))
	}
	return rates
}

// MeanHeartRate averages the instantaneous rates. With fewer than two beats
// there is no interval and the result is NaN.
func MeanHeartRate(beats []float64) float64 {
	rates := Rates(beats)
	if len(rates) == 0 {
		return math.NaN()
	}
	return stat.Mean(rates, nil)
}
