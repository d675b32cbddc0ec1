package metrics

import (
	"fmt"

	"github.com/kilianp07/fleetopt/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the endpoint even when a prometheus sink is configured.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
	// EventBuffer is the number of cycle events queued for the collector
	// before new ones are dropped. 0 selects the bus default.
	EventBuffer int `json:"event_buffer" yaml:"event_buffer"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" && c.HasSink("prometheus") {
		c.PrometheusAddr = ":9090"
	}
}

// Validate checks the event buffer and that every sink names a type.
func (c Config) Validate() error {
	if c.EventBuffer < 0 {
		return fmt.Errorf("metrics.event_buffer must not be negative, got %d", c.EventBuffer)
	}
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
