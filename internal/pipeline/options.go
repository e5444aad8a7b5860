package pipeline

import (
	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
	"github.com/ivanzxc/go-ecg-analysis/internal/signal"
)

// options defines all configuration options for a pipeline run.
type options struct {
	filter signal.Filter    // Applied between ingestion and beat detection
	diag   diag.Diagnostics // Receives ingestion events
}

// Option is a function that configures the pipeline options.
type Option func(*options)

// WithFilter sets the filter applied to the raw voltage.
func WithFilter(f signal.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithDiagnostics sets the receiver of ingestion events.
func WithDiagnostics(d diag.Diagnostics) Option {
	return func(o *options) {
		o.diag = d
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		filter: signal.BandPass{LowHz: 5, HighHz: 20},
		diag:   diag.Nop{},
	}
}
