package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIntervalMinutes = 60
	DefaultHorizonDays     = 7
)

// SchedulerConfig defines how often cycles run and how far they look ahead.
type SchedulerConfig struct {
	Enabled         bool `json:"enabled" yaml:"enabled"`
	IntervalMinutes int  `json:"interval_minutes" yaml:"interval_minutes"`
	HorizonDays     int  `json:"horizon_days" yaml:"horizon_days"`
}

// SetDefaults fills unset fields.
func (c *SchedulerConfig) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = DefaultIntervalMinutes
	}
	if c.HorizonDays == 0 {
		c.HorizonDays = DefaultHorizonDays
	}
}

// Validate checks the configured values.
func (c SchedulerConfig) Validate() error {
	if c.IntervalMinutes < 0 {
		return errors.New("interval_minutes must be positive")
	}
	if c.HorizonDays < 0 || c.HorizonDays > 14 {
		return fmt.Errorf("horizon_days must be within [1,14], got %d", c.HorizonDays)
	}
	return nil
}

// Interval returns the cycle period.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// LoadConfig reads a standalone scheduler file. The format follows the
// file extension.
func LoadConfig(path string) (SchedulerConfig, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supportedFormat(format) {
		return SchedulerConfig{}, fmt.Errorf("unsupported scheduler config format: %q", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	defer func() { _ = f.Close() }()
	cfg, err := DecodeConfig(f, format)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a yaml or json SchedulerConfig, applies defaults and
// validates it.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&cfg)
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return cfg, fmt.Errorf("unsupported scheduler config format: %q", format)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

func supportedFormat(f string) bool {
	switch f {
	case "yaml", "yml", "json":
		return true
	}
	return false
}
