package plot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ivanzxc/go-ecg-analysis/internal/output"
)

// Ext is the file extension of rendered plots.
const Ext = ".png"

// Render draws the trace as a line and every beat as a red dot on top of it.
func Render(w io.Writer, time, voltage, beats []float64) error {
	if len(time) < 2 {
		return errors.New("plot: need at least 2 samples")
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "voltage",
			XValues: time,
			YValues: voltage,
		},
	}
	if len(beats) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name: "beats",
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    drawing.ColorRed,
			},
			XValues: beats,
			YValues: sampleAt(time, voltage, beats),
		})
	}

	graph := chart.Chart{
		Width:  1024,
		Height: 256,
		XAxis: chart.XAxis{
			Name: "time",
		},
		YAxis: chart.YAxis{
			Name: "voltage",
		},
		Series: series,
	}

	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	_, err := buffer.WriteTo(w)
	return err
}

// WriteFile renders into dir using the input's stem and refuses to replace an
// existing image.
func WriteFile(dir, input string, time, voltage, beats []float64) (string, error) {
	f, err := output.Create(dir, output.Name(input, Ext))
	if err != nil {
		return "", err
	}
	if err := Render(f, time, voltage, beats); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// sampleAt looks up the voltage recorded at each beat timestamp.
func sampleAt(time, voltage, at []float64) []float64 {
	out := make([]float64, len(at))
	for i, t := range at {
		j := sort.SearchFloat64s(time, t)
		if j == len(time) {
			j = len(time) - 1
		}
		out[i] = voltage[j]
	}
	return out
}
