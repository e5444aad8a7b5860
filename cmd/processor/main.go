package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	osSignal "os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-ecg-analysis/internal/config"
	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
	"github.com/ivanzxc/go-ecg-analysis/internal/output"
	"github.com/ivanzxc/go-ecg-analysis/internal/pipeline"
	"github.com/ivanzxc/go-ecg-analysis/internal/stream"
)

type jobReply struct {
	Envelope *stream.Envelope `json:"envelope,omitempty"`
	Path     string           `json:"path,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type worker struct {
	cfg    *config.Config
	logger *zap.Logger
	pub    stream.Publisher
}

func main() {

	var (
		cfgPath = flag.String("config", "", "YAML config file")
		natsURL = flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
		queue   = flag.String("queue", "ecg-processors", "queue group")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = *natsURL
	}

	logger := diag.NewZap(cfg.LogFile, false)
	defer logger.Sync()

	nc, err := stream.Connect(cfg.NATS.URL)
	if err != nil {
		logger.Fatal("processor: nats", zap.Error(err))
	}
	defer nc.Drain()

	pubs := stream.NewPublishers(nc, cfg.NATS.Subject, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer pubs.Close()

	w := &worker{cfg: cfg, logger: logger, pub: pubs}

	_, err = nc.QueueSubscribe(cfg.NATS.JobsSubject, *queue, func(msg *nats.Msg) {
		reply := w.handle(string(msg.Data))

		b, _ := json.Marshal(reply)
		if msg.Reply != "" {
			if err := msg.Respond(b); err != nil {
				logger.Warn("processor: reply failed", zap.Error(err))
			}
		}
	})
	if err != nil {
		logger.Fatal("processor: subscribe", zap.Error(err))
	}

	logger.Info("processor running...", zap.String("subject", cfg.NATS.JobsSubject))

	ch := make(chan os.Signal, 1)
	osSignal.Notify(ch, os.Interrupt)
	<-ch
	logger.Info("processor stopped")
}

// handle runs one job. Every job gets its own pipeline and diagnostics.
func (w *worker) handle(path string) jobReply {
	log := w.logger.With(zap.String("file", path))

	p := pipeline.New(
		pipeline.WithFilter(w.cfg.Filter.Build()),
		pipeline.WithDiagnostics(diag.NewLogger(log)),
	)

	res, err := p.AnalyzeFile(path)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		return jobReply{Error: err.Error()}
	}

	out, err := output.Write(w.cfg.OutputDir, path, res.Metrics)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		return jobReply{Error: err.Error()}
	}

	env := stream.NewEnvelope(path, res.Metrics)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.pub.Publish(ctx, env); err != nil {
		log.Warn("publish failed", zap.Error(err))
	}

	log.Info("job done", zap.Int("num_beats", res.Metrics.NumBeats()), zap.String("run_id", env.RunID))
	return jobReply{Envelope: &env, Path: out}
}
