package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	discarded int
	ranges    [][2]float64
}

func (r *recorder) SampleDiscarded() { r.discarded++ }

func (r *recorder) VoltageOutOfRange(min, max float64) {
	r.ranges = append(r.ranges, [2]float64{min, max})
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line     string
		wantTime string
		wantVolt string
	}{
		{"1, 2", "1", "2"},
		{"1, ", "1", ""},
		{"2", "2", ""},
		{"  , 3", "", "3"},
		{"0.003,-0.145\n", "0.003", "-0.145"},
		{" 4.5 , 0.25 \r\n", "4.5", "0.25"},
		{"", "", ""},
		{"1,2,3", "1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			gotTime, gotVolt := SplitLine(tt.line)
			assert.Equal(t, tt.wantTime, gotTime)
			assert.Equal(t, tt.wantVolt, gotVolt)
		})
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"-0.56677", true},
		{"12", true},
		{"+3.5", true},
		{"1e-3", true},
		{"Happy", false},
		{"#*$(", false},
		{"", false},
		{"NaN", false},
		{"nan", false},
		{"Inf", false},
		{"-infinity", false},
		{"1.2.3", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumber(tt.in))
		})
	}
}

func TestCheckSample(t *testing.T) {
	tests := []struct {
		name string
		time string
		volt string
		want bool
	}{
		{"integers", "1", "1", true},
		{"missing voltage", "1", "", false},
		{"word voltage", "1", "Hello", false},
		{"missing time", "", "1", false},
		{"decimals", "0.5", "-1.7", true},
		{"nan voltage", "0.5", "NaN", false},
		{"nan time", "nan", "0.1", false},
		{"infinite voltage", "0.5", "inf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckSample(tt.time, tt.volt))
		})
	}
}

func TestRead(t *testing.T) {
	input := strings.Join([]string{
		"0.000,-0.145",
		"0.003,-0.145",
		"0.006,",
		"bad,0.1",
		"0.008,NaN",
		"",
		"0.011, -0.120",
		"0.014,-0.135",
	}, "\n")

	rec := &recorder{}
	trace, err := Read(strings.NewReader(input), rec)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.003, 0.011, 0.014}, trace.Time)
	assert.Equal(t, []float64{-0.145, -0.145, -0.120, -0.135}, trace.Voltage)
	assert.Equal(t, 4, rec.discarded)
	assert.Empty(t, rec.ranges)
}

func TestRead_SequencesStayAligned(t *testing.T) {
	lines := []string{"1,2", "x", "3,", ",4", "5,6", "7,8,9", "NaN,1", "10,-11"}

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(lines[i%len(lines)])
		sb.WriteByte('\n')
	}

	rec := &recorder{}
	trace, err := Read(strings.NewReader(sb.String()), rec)
	require.NoError(t, err)

	assert.Equal(t, len(trace.Time), len(trace.Voltage))
	assert.Equal(t, 50, trace.Len()+rec.discarded)
}

func TestRead_OutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRanges [][2]float64
	}{
		{
			name:  "boundary values are fine",
			input: "0,300\n1,-300\n2,0\n",
		},
		{
			name:       "single warning for several violations",
			input:      "0,301\n1,-350\n2,10\n3,400\n",
			wantRanges: [][2]float64{{-350, 400}},
		},
		{
			name:       "negative only",
			input:      "0,1\n1,-300.5\n",
			wantRanges: [][2]float64{{-300.5, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := Read(strings.NewReader(tt.input), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRanges, rec.ranges)
		})
	}
}

func TestRead_EmptyInput(t *testing.T) {
	rec := &recorder{}
	trace, err := Read(strings.NewReader("time,voltage\n\nfoo\n"), rec)
	require.NoError(t, err)

	assert.Equal(t, 0, trace.Len())
	assert.Equal(t, 3, rec.discarded)
}

func TestRead_OverlongLine(t *testing.T) {
	long := strings.Repeat("x", 70000)

	tests := []struct {
		name  string
		input string
		want  []float64
	}{
		{
			name:  "in the middle",
			input: "0,1\n" + long + "\n1,2\n2,3\n",
			want:  []float64{0, 1, 2},
		},
		{
			name:  "last line without newline",
			input: "0,1\n1,2\n" + long,
			want:  []float64{0, 1},
		},
		{
			name:  "numeric but too long",
			input: "0," + strings.Repeat("1", MaxLineLength) + "\n3,4",
			want:  []float64{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			trace, err := Read(strings.NewReader(tt.input), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, trace.Time)
			assert.Equal(t, 1, rec.discarded)
		})
	}
}

func TestRead_TrailingNewlineIsNotASample(t *testing.T) {
	rec := &recorder{}
	trace, err := Read(strings.NewReader("0,1\r\n1,2\r\n"), rec)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, trace.Voltage)
	assert.Zero(t, rec.discarded)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestRead_ReaderError(t *testing.T) {
	_, err := Read(failingReader{}, nil)
	assert.ErrorContains(t, err, "disk gone")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test1.csv")
	require.NoError(t, os.WriteFile(path, []byte("0,1\n0.5,2\n"), 0o600))

	trace, err := ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5}, trace.Time)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
