package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-ecg-analysis/internal/diag"
	"github.com/ivanzxc/go-ecg-analysis/internal/output"
	"github.com/ivanzxc/go-ecg-analysis/internal/signal"
	"github.com/ivanzxc/go-ecg-analysis/internal/stream"
)

// Malformed records mixed into the output.
var corruptions = []func(t, v float64) string{
	func(t, _ float64) string { return fmt.Sprintf("%.4f,", t) },
	func(_, v float64) string { return fmt.Sprintf(",%.4f", v) },
	func(t, _ float64) string { return fmt.Sprintf("%.4f,bad", t) },
	func(t, _ float64) string { return fmt.Sprintf("%.4f,NaN", t) },
	func(_, _ float64) string { return "" },
}

type params struct {
	fs      float64
	hr      float64
	seconds float64
	noise   float64
	gain    float64
	corrupt float64
	seed    uint64
}

func main() {

	var (
		out     = flag.String("out", "ecg_sim.csv", "output csv file")
		fs      = flag.Float64("fs", 250, "sampling rate Hz")
		hr      = flag.Float64("hr", 72, "heart rate bpm")
		seconds = flag.Float64("seconds", 20, "recording length")
		noise   = flag.Float64("noise", 0.02, "noise amplitude")
		gain    = flag.Float64("gain", 1, "R wave amplitude")
		corrupt = flag.Float64("corrupt", 0.01, "fraction of malformed lines")
		seed    = flag.Uint64("seed", 1, "seed for line corruption")
		natsURL = flag.String("nats", "", "NATS url; when set the file is submitted as a job")
		jobs    = flag.String("jobs", "ecg.jobs", "jobs subject")
	)
	flag.Parse()

	logger := diag.NewZap("", false)
	defer logger.Sync()

	f, err := output.Create(filepath.Dir(*out), filepath.Base(*out))
	if err != nil {
		logger.Fatal("producer: cannot create output", zap.Error(err))
	}

	p := params{fs: *fs, hr: *hr, seconds: *seconds, noise: *noise, gain: *gain, corrupt: *corrupt, seed: *seed}
	n, err := generate(f, p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatal("producer: write failed", zap.Error(err))
	}
	logger.Info("producer: recording written", zap.String("path", *out), zap.Int("lines", n))

	if *natsURL == "" {
		return
	}

	nc, err := stream.Connect(*natsURL)
	if err != nil {
		logger.Fatal("producer: nats", zap.Error(err))
	}
	defer nc.Drain()

	abs, err := filepath.Abs(*out)
	if err != nil {
		logger.Fatal("producer: path", zap.Error(err))
	}
	msg, err := nc.Request(*jobs, []byte(abs), 30*time.Second)
	if err != nil {
		logger.Fatal("producer: job request failed", zap.Error(err))
	}
	logger.Info("producer: job done", zap.ByteString("reply", msg.Data))
}

// generate writes the simulated recording and returns the number of lines.
func generate(w io.Writer, p params) (int, error) {
	sim := signal.NewECGSim(p.fs, p.hr, p.noise, p.gain)
	rng := rand.New(rand.NewPCG(p.seed, p.seed))

	bw := bufio.NewWriter(w)
	samples := int(p.fs * p.seconds)
	lines := 0
	for range samples {
		t, v := sim.Next()

		line := fmt.Sprintf("%.4f,%.5f", t, v)
		if rng.Float64() < p.corrupt {
			line = corruptions[rng.IntN(len(corruptions))](t, v)
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return lines, err
		}
		lines++
	}
	return lines, bw.Flush()
}
