package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/ivanzxc/go-ecg-analysis/internal/analysis"
	"github.com/ivanzxc/go-ecg-analysis/internal/ingest"
)

// Result carries everything one run produced.
type Result struct {
	Trace    ingest.Trace
	Filtered []float64
	Beats    []float64
	Metrics  analysis.Metrics
}

// Pipeline runs ingestion, filtering, beat detection and aggregation in
// order. It holds no state between runs.
type Pipeline struct {
	opts options
}

func New(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{opts: o}
}

// Analyze reads a whole recording from r and measures it.
func (p *Pipeline) Analyze(r io.Reader) (Result, error) {
	trace, err := ingest.Read(r, p.opts.diag)
	if err != nil {
		return Result{}, err
	}
	if trace.Len() == 0 {
		return Result{}, analysis.ErrNoValidSamples
	}

	filtered, err := p.opts.filter.Apply(trace.Time, trace.Voltage)
	if err != nil {
		return Result{}, fmt.Errorf("filter: %w", err)
	}

	beats := analysis.DetectBeats(trace.Time, filtered)
	metrics, err := analysis.Aggregate(trace.Time, filtered, beats)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Trace:    trace,
		Filtered: filtered,
		Beats:    beats,
		Metrics:  metrics,
	}, nil
}

// AnalyzeFile opens path and runs Analyze on it.
func (p *Pipeline) AnalyzeFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	res, err := p.Analyze(f)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
