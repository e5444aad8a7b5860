package output

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzxc/go-ecg-analysis/internal/analysis"
)

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"test_data1.csv", "test_data1.json"},
		{"data/test_data1.csv", "test_data1.json"},
		{"archive.tar.gz", "archive.json"},
		{"noext", "noext.json"},
		{"/abs/path/rec.2024.csv", "rec.json"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.input, Ext))
		})
	}
}

func metrics(t *testing.T) analysis.Metrics {
	t.Helper()
	m, err := analysis.Aggregate([]float64{0, 1, 2, 3}, []float64{0, 2, -1, 2}, []float64{1, 3})
	require.NoError(t, err)
	return m
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, "input/test_data7.csv", metrics(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test_data7.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.ElementsMatch(t,
		[]string{"duration", "voltage_extremes", "num_beats", "mean_hr_bpm", "beats"},
		keys(doc))
	assert.Equal(t, 3.0, doc["duration"])
	assert.Equal(t, 30.0, doc["mean_hr_bpm"])
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "test_data7.json")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o600))

	_, err := Write(dir, "test_data7.csv", metrics(t))
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.ErrorIs(t, err, fs.ErrExist)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taken.png"), nil, 0o600))

	assert.NoError(t, Available(dir, "free.json", "free.png"))
	assert.NoError(t, Available(filepath.Join(dir, "missing"), "free.json"))

	err := Available(dir, "free.json", "taken.png")
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestCreate_MissingDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope"), "x.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDestinationExists)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
