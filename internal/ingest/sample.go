package ingest

import (
	"math"
	"strconv"
	"strings"
)

// Sample is one validated (time, voltage) pair.
type Sample struct {
	Time    float64
	Voltage float64
}

// SplitLine breaks a raw record into its time and voltage tokens. Missing
// fields come back as empty strings, and so does the voltage of a record
// with more than two fields.
func SplitLine(line string) (string, string) {
	line = strings.TrimRight(line, "\r\n")

	fields := strings.Split(line, ",")
	timeTok := strings.TrimSpace(fields[0])
	if len(fields) != 2 {
		return timeTok, ""
	}
	return timeTok, strings.TrimSpace(fields[1])
}

// IsNumber reports whether s is a real literal such as "-0.56677" or "1e-3".
// Words like "NaN" and "Inf" parse but are not accepted here.
func IsNumber(s string) bool {
	_, ok := parseFinite(s)
	return ok
}

// CheckSample reports whether both tokens form a usable sample.
func CheckSample(timeTok, voltTok string) bool {
	_, ok := parsePair(timeTok, voltTok)
	return ok
}

// ParseSample runs SplitLine and the validation on one raw record.
func ParseSample(line string) (Sample, bool) {
	return parsePair(SplitLine(line))
}

func parsePair(timeTok, voltTok string) (Sample, bool) {
	t, ok := parseFinite(timeTok)
	if !ok {
		return Sample{}, false
	}
	v, ok := parseFinite(voltTok)
	if !ok {
		return Sample{}, false
	}
	return Sample{Time: t, Voltage: v}, true
}

// parseFinite rejects empty tokens, non-numeric text, NaN and +/-Inf.
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
