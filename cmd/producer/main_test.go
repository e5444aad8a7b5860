package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzxc/go-ecg-analysis/internal/ingest"
	"github.com/ivanzxc/go-ecg-analysis/internal/pipeline"
)

type discards struct{ n int }

func (d *discards) SampleDiscarded()               { d.n++ }
func (d *discards) VoltageOutOfRange(_, _ float64) {}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	p := params{fs: 250, hr: 60, seconds: 10, noise: 0.02, gain: 1, corrupt: 0.05, seed: 7}

	n, err := generate(&buf, p)
	require.NoError(t, err)
	assert.Equal(t, 2500, n)
	assert.Equal(t, 2500, strings.Count(buf.String(), "\n"))

	d := &discards{}
	trace, err := ingest.Read(bytes.NewReader(buf.Bytes()), d)
	require.NoError(t, err)
	assert.Equal(t, 2500, trace.Len()+d.n)
	assert.Greater(t, d.n, 50)
	assert.Less(t, d.n, 200)
}

func TestGenerate_Deterministic(t *testing.T) {
	p := params{fs: 250, hr: 72, seconds: 2, noise: 0.02, gain: 1, corrupt: 0.1, seed: 3}

	var a, b bytes.Buffer
	_, err := generate(&a, p)
	require.NoError(t, err)
	_, err = generate(&b, p)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerate_Analyzable(t *testing.T) {
	var buf bytes.Buffer
	_, err := generate(&buf, params{fs: 360, hr: 72, seconds: 10, noise: 0.02, gain: 1, corrupt: 0.01, seed: 1})
	require.NoError(t, err)

	res, err := pipeline.New().Analyze(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Metrics.NumBeats())
	assert.InDelta(t, 72, res.Metrics.MeanHRBPM(), 2)
}
