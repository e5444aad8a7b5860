package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	osSignal "os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
	"github.com/ivanzxc/go-ecg-analysis/internal/stream"
)

// relay forwards result envelopes to the hub and counts them.
type relay struct {
	hub     *Hub
	logger  *zap.Logger
	results prometheus.Counter
	invalid prometheus.Counter
}

func newRelay(hub *Hub, logger *zap.Logger, reg prometheus.Registerer) *relay {
	r := &relay{
		hub:    hub,
		logger: logger,
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecg_server_results_total",
			Help: "Analysis results relayed to websocket clients.",
		}),
		invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecg_server_invalid_results_total",
			Help: "Messages on the results subject that were not envelopes.",
		}),
	}
	reg.MustRegister(r.results, r.invalid)
	return r
}

func (r *relay) forward(data []byte) {
	var env stream.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.invalid.Inc()
		r.logger.Warn("dropping malformed result", zap.Error(err))
		return
	}
	r.results.Inc()
	r.logger.Debug("result", zap.String("run_id", env.RunID), zap.String("source", env.Source))
	r.hub.broadcastText(data)
}

func main() {

	var (
		natsURL = flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
		subject = flag.String("subject", "ecg.metrics", "results subject")
		addr    = flag.String("addr", ":8080", "http address")
	)
	flag.Parse()

	logger := diag.NewZap("", false)
	defer logger.Sync()

	nc, err := stream.Connect(*natsURL)
	if err != nil {
		logger.Fatal("server: nats", zap.Error(err))
	}
	defer nc.Drain()

	reg := prometheus.NewRegistry()
	hub := newHub(reg)
	rl := newRelay(hub, logger, reg)

	if _, err := nc.Subscribe(*subject, func(msg *nats.Msg) {
		rl.forward(msg.Data)
	}); err != nil {
		logger.Fatal("server: subscribe", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !nc.IsConnected() {
			http.Error(w, "nats disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/ws", hub)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info("server running", zap.String("addr", *addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server: listen", zap.Error(err))
		}
	}()

	ch := make(chan os.Signal, 1)
	osSignal.Notify(ch, os.Interrupt)
	<-ch

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server.Shutdown(ctx)
	logger.Info("server stopped")
}
