package analysis

import "slices"

// MergeGap is the largest spacing between two above-threshold timestamps
// that still belong to the same beat.
const MergeGap = 0.1

// DetectBeats returns one timestamp per heartbeat found in a filtered trace.
func DetectBeats(time, voltage []float64) []float64 {
	groups := GroupCandidates(Candidates(time, voltage), MergeGap)
	return Representatives(groups)
}

// Candidates returns, in input order, the timestamps whose voltage is
// strictly above half of the trace maximum.
func Candidates(time, voltage []float64) []float64 {
	if len(voltage) == 0 {
		return nil
	}
	threshold := slices.Max(voltage) / 2

	var out []float64
	for i, v := range voltage {
		if v > threshold {
			out = append(out, time[i])
		}
	}
	return out
}

// GroupCandidates splits candidates into runs. A run ends when the next
// candidate is more than gap after the previous one. The first candidate
// always opens a run.
func GroupCandidates(candidates []float64, gap float64) [][]float64 {
	var (
		groups  [][]float64
		current []float64
	)
	for i, c := range candidates {
		if i > 0 && c-candidates[i-1] > gap {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// Representatives picks the element at index len/2 of every group.
func Representatives(groups [][]float64) []float64 {
	out := make([]float64, 0, len(groups))
	for _, g := range groups {
		out = append(out, g[len(g)/2])
	}
	return out
}
