package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivanzxc/go-ecg-analysis/internal/signal"
)

// ErrInvalid is returned when a configuration value cannot be used.
var ErrInvalid = errors.New("invalid configuration")

type Filter struct {
	Enabled bool    `yaml:"enabled"`
	LowHz   float64 `yaml:"low_hz"`
	HighHz  float64 `yaml:"high_hz"`
}

// Build returns the filter described by f.
func (f Filter) Build() signal.Filter {
	if !f.Enabled {
		return signal.Identity{}
	}
	return signal.BandPass{LowHz: f.LowHz, HighHz: f.HighHz}
}

type NATS struct {
	URL         string `yaml:"url"`
	Subject     string `yaml:"subject"`
	JobsSubject string `yaml:"jobs_subject"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	OutputDir string `yaml:"output_dir"`
	LogFile   string `yaml:"log_file"`
	Plot      bool   `yaml:"plot"`
	Filter    Filter `yaml:"filter"`
	NATS      NATS   `yaml:"nats"`
	Kafka     Kafka  `yaml:"kafka"`
}

func Default() *Config {
	return &Config{
		OutputDir: ".",
		LogFile:   "ecg_analysis.log",
		Filter: Filter{
			Enabled: true,
			LowHz:   5,
			HighHz:  20,
		},
		NATS: NATS{
			Subject:     "ecg.metrics",
			JobsSubject: "ecg.jobs",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file at path,
// a .env file if present and finally the ECG_* environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.OutputDir, "ECG_OUTPUT_DIR")
	setString(&c.LogFile, "ECG_LOG_FILE")
	setString(&c.NATS.URL, "ECG_NATS_URL")
	setString(&c.NATS.Subject, "ECG_SUBJECT")
	setString(&c.NATS.JobsSubject, "ECG_JOBS_SUBJECT")
	setString(&c.Kafka.Topic, "ECG_KAFKA_TOPIC")
	if v := os.Getenv("ECG_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := setBool(&c.Plot, "ECG_PLOT"); err != nil {
		return err
	}
	if err := setBool(&c.Filter.Enabled, "ECG_FILTER"); err != nil {
		return err
	}
	if err := setFloat(&c.Filter.LowHz, "ECG_LOW_CUT_HZ"); err != nil {
		return err
	}
	return setFloat(&c.Filter.HighHz, "ECG_HIGH_CUT_HZ")
}

// Validate checks the values Load cannot fix on its own.
func (c *Config) Validate() error {
	if c.Filter.Enabled {
		if c.Filter.LowHz <= 0 || c.Filter.HighHz <= 0 {
			return fmt.Errorf("%w: filter corners must be positive", ErrInvalid)
		}
		if c.Filter.LowHz >= c.Filter.HighHz {
			return fmt.Errorf("%w: low_hz %g must be below high_hz %g", ErrInvalid, c.Filter.LowHz, c.Filter.HighHz)
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("%w: kafka topic is required when brokers are set", ErrInvalid)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	*dst = b
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	*dst = f
	return nil
}
