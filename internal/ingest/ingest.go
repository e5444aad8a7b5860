package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
)

// VoltageLimit bounds the plausible raw voltage. Values exactly at the
// limit are accepted.
const VoltageLimit = 300.0

// MaxLineLength is the longest record Read will parse. Longer lines are
// consumed and discarded.
const MaxLineLength = 64 * 1024

// Trace holds the samples of one recording as two aligned sequences.
type Trace struct {
	Time    []float64
	Voltage []float64
}

// Len returns the number of samples.
func (t Trace) Len() int { return len(t.Time) }

func (t *Trace) append(s Sample) {
	t.Time = append(t.Time, s.Time)
	t.Voltage = append(t.Voltage, s.Voltage)
}

// Read consumes r until EOF and returns every usable sample in input order.
// Unusable lines are skipped and reported to d. A read error aborts the scan.
func Read(r io.Reader, d diag.Diagnostics) (Trace, error) {
	if d == nil {
		d = diag.Nop{}
	}

	var trace Trace
	br := bufio.NewReaderSize(r, MaxLineLength)
	for {
		line, tooLong, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return Trace{}, fmt.Errorf("read samples: %w", err)
		}

		switch {
		case tooLong:
			d.SampleDiscarded()
		case line != "" || err == nil:
			if s, ok := ParseSample(line); ok {
				trace.append(s)
			} else {
				d.SampleDiscarded()
			}
		}

		if err != nil {
			break
		}
	}

	if lo, hi, out := outOfRange(trace.Voltage); out {
		d.VoltageOutOfRange(lo, hi)
	}
	return trace, nil
}

// ReadFile opens path and runs Read on it.
func ReadFile(path string, d diag.Diagnostics) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, d)
}

// readLine returns the next line including its terminator. A line that does
// not fit the reader's buffer is skipped up to its end and reported as
// tooLong. err is io.EOF on the last line.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	chunk, err := br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return string(chunk), false, err
	}
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}
	return "", true, err
}

func outOfRange(voltage []float64) (lo, hi float64, out bool) {
	for i, v := range voltage {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
		if v > VoltageLimit || v < -VoltageLimit {
			out = true
		}
	}
	return lo, hi, out
}
