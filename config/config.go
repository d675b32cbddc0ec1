package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/scheduler"
	"github.com/kilianp07/fleetopt/infra/mqtt"
)

// Config is the service configuration, one section per component.
type Config struct {
	Store     StoreConfig               `json:"store"`
	Optimizer scheduler.SchedulerConfig `json:"optimizer"`
	API       APIConfig                 `json:"api"`
	Metrics   metrics.Config            `json:"metrics"`
	Archive   ArchiveConfig             `json:"archive"`
	MQTT      mqtt.Config               `json:"mqtt"`
	Sentry    SentryConfig              `json:"sentry"`
}

// Load reads the configuration file at path, applies K_ prefixed environment
// overrides (K_API__TOKEN sets api.token) and validates the result. An empty
// path loads the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Store.SetDefaults()
	c.Optimizer.SetDefaults()
	c.API.SetDefaults()
	c.Metrics.SetDefaults()
	c.Archive.SetDefaults()
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return nil
}
