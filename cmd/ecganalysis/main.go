package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-ecg-analysis/internal/analysis"
	"github.com/ivanzxc/go-ecg-analysis/internal/config"
	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
	"github.com/ivanzxc/go-ecg-analysis/internal/output"
	"github.com/ivanzxc/go-ecg-analysis/internal/pipeline"
	"github.com/ivanzxc/go-ecg-analysis/internal/plot"
	"github.com/ivanzxc/go-ecg-analysis/internal/stream"
)

func main() {

	var (
		in      = flag.String("in", "", "ECG csv file (asked for when empty)")
		cfgPath = flag.String("config", "", "YAML config file")
		outDir  = flag.String("out", "", "output directory (overrides config)")
		png     = flag.Bool("plot", false, "also render the filtered trace as PNG")
		debug   = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *png {
		cfg.Plot = true
	}

	logger := diag.NewZap(cfg.LogFile, *debug)
	defer logger.Sync()

	filename := *in
	if filename == "" {
		filename, err = prompt(os.Stdin, os.Stdout)
		if err != nil {
			logger.Fatal("no input file", zap.Error(err))
		}
	}

	if err := run(context.Background(), logger, cfg, filename); err != nil {
		if errors.Is(err, analysis.ErrNoValidSamples) {
			logger.Error("analysis failed: the file has no valid samples", zap.String("file", filename))
		} else if errors.Is(err, output.ErrDestinationExists) {
			logger.Error("analysis failed: output file already exists", zap.Error(err))
		} else {
			logger.Error("analysis failed", zap.String("file", filename), zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func prompt(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Please enter the filename: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("empty filename")
	}
	return name, nil
}

func run(ctx context.Context, logger *zap.Logger, cfg *config.Config, filename string) error {
	logger.Info("analysis started", zap.String("file", filename))

	targets := []string{output.Name(filename, output.Ext)}
	if cfg.Plot {
		targets = append(targets, output.Name(filename, plot.Ext))
	}
	if err := output.Available(cfg.OutputDir, targets...); err != nil {
		return err
	}

	p := pipeline.New(
		pipeline.WithFilter(cfg.Filter.Build()),
		pipeline.WithDiagnostics(diag.NewLogger(logger)),
	)

	res, err := p.AnalyzeFile(filename)
	if err != nil {
		return err
	}

	m := res.Metrics
	logger.Info("analysis finished",
		zap.Float64("duration", m.Duration()),
		zap.Int("num_beats", m.NumBeats()),
		zap.Float64("mean_hr_bpm", m.MeanHRBPM()),
	)

	path, err := output.Write(cfg.OutputDir, filename, m)
	if err != nil {
		return err
	}
	logger.Info("metrics written", zap.String("path", path))

	// The metrics are stored from here on; later steps only warn.
	if cfg.Plot {
		png, err := plot.WriteFile(cfg.OutputDir, filename, res.Trace.Time, res.Filtered, res.Beats)
		if err != nil {
			logger.Warn("plot failed", zap.Error(err))
		} else {
			logger.Info("plot written", zap.String("path", png))
		}
	}

	if err := publish(ctx, logger, cfg, stream.NewEnvelope(filename, m)); err != nil {
		logger.Warn("results not published", zap.Error(err))
	}
	return nil
}

func publish(ctx context.Context, logger *zap.Logger, cfg *config.Config, env stream.Envelope) error {
	var pubs stream.Multi
	if cfg.NATS.URL != "" {
		nc, err := stream.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer nc.Drain()
		pubs = stream.NewPublishers(nc, cfg.NATS.Subject, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		pubs = stream.NewPublishers(nil, "", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	if len(pubs) == 0 {
		return nil
	}
	defer pubs.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pubs.Publish(ctx, env); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	logger.Info("metrics published", zap.String("run_id", env.RunID))
	return nil
}
