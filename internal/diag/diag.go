package diag

import (
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Diagnostics receives the discrete events raised while ingesting a trace.
// Implementations decide where those events end up.
type Diagnostics interface {
	// SampleDiscarded is called once for every unusable input line.
	SampleDiscarded()
	// VoltageOutOfRange is called at most once per run with the extremes of
	// the offending trace.
	VoltageOutOfRange(min, max float64)
}

// Nop drops every event.
type Nop struct{}

func (Nop) SampleDiscarded()               {}
func (Nop) VoltageOutOfRange(_, _ float64) {}

// Logger forwards events to a zap logger.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log.Named("ingest")}
}

func (l *Logger) SampleDiscarded() {
	l.log.Info("sample discarded")
}

func (l *Logger) VoltageOutOfRange(min, max float64) {
	l.log.Warn("voltage outside +/-300 range",
		zap.Float64("min", min),
		zap.Float64("max", max),
	)
}

// NewZap builds the process logger: console output on stderr and, when
// logFile is not empty, a rotating JSON log file.
func NewZap(logFile string, debug bool) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if logFile != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), sink, level))
	}

	return zap.New(zapcore.NewTee(cores...))
}
