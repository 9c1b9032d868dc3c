package utils

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sheikhrachel/go-gol-watch/detector"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for a run
type Config struct {
	Width          uint32              `json:"width" yaml:"width"`
	Height         uint32              `json:"height" yaml:"height"`
	SeedA          uint32              `json:"seed_a" yaml:"seed_a"`
	SeedB          uint32              `json:"seed_b" yaml:"seed_b"`
	Retention      int                 `json:"retention" yaml:"retention"`
	Thresholds     detector.Thresholds `json:"thresholds" yaml:"thresholds"`
	Pattern        string              `json:"pattern" yaml:"pattern"`
	FrameRate      Duration            `json:"frame_rate" yaml:"frame_rate"`
	MaxGenerations int                 `json:"max_generations" yaml:"max_generations"`
	UseMemoryPool  bool                `json:"use_memory_pool" yaml:"use_memory_pool"`
	ReportURL      string              `json:"report_url" yaml:"report_url"`
	ReportTimeout  Duration            `json:"report_timeout" yaml:"report_timeout"`
	MetricsAddr    string              `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel       string              `json:"log_level" yaml:"log_level"`
	Quiet          bool                `json:"quiet" yaml:"quiet"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:          100,
		Height:         32,
		SeedA:          5,
		SeedB:          11,
		Retention:      150,
		Thresholds:     detector.DefaultThresholds(),
		FrameRate:      Duration(25 * time.Millisecond),
		MaxGenerations: 0, // run until the detector says stop
		UseMemoryPool:  true,
		ReportTimeout:  Duration(2 * time.Second),
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks the construction parameters and thresholds
func (c Config) Validate() error {
	switch {
	case c.Width == 0 || c.Height == 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] width and height must be positive, got %dx%d", c.Width, c.Height)
	case c.SeedA == 0 || c.SeedB == 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] seeds must be non-zero, got %d and %d", c.SeedA, c.SeedB)
	case c.Retention <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] retention must be positive, got %d", c.Retention)
	case c.Thresholds.Pair <= 0 || c.Thresholds.PairCount <= 0 || c.Thresholds.Single <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] thresholds must be positive, got %+v", c.Thresholds)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] max_generations must not be negative, got %d", c.MaxGenerations)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps debug/info/warn/error to a slog level; empty means info
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, errors.Wrapf(ErrInvalidConfig, "[ParseLogLevel] unknown log level %q", s)
	}
	return level, nil
}

// Duration is a time.Duration that reads "150ms" style strings or nanoseconds
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return errors.Wrapf(err, "[Duration] invalid duration %q", val)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(val))
	case int:
		*d = Duration(time.Duration(val))
	default:
		return errors.Errorf("[Duration] unsupported duration value %v", v)
	}
	return nil
}
