package stream

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/ivanzxc/go-ecg-analysis/internal/analysis"
)

// Envelope wraps the metrics of one run for distribution.
type Envelope struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
	Metrics    analysis.Metrics `json:"metrics"`
}

func NewEnvelope(source string, m analysis.Metrics) Envelope {
	return Envelope{
		RunID:      uuid.New().String(),
		Source:     source,
		AnalyzedAt: time.Now().UTC(),
		Metrics:    m,
	}
}

// Publisher is a generic transport for analysis results (NATS, Kafka, etc.)
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Multi fans an envelope out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, env Envelope) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewPublishers returns a publisher for every configured transport. nc is
// nil when results should not go to NATS, brokers empty when not to Kafka.
func NewPublishers(nc *nats.Conn, subject string, brokers []string, topic string) Multi {
	var m Multi
	if nc != nil {
		m = append(m, NewNATSPublisher(nc, subject))
	}
	if len(brokers) > 0 {
		m = append(m, NewKafkaPublisher(brokers, topic))
	}
	return m
}
