package config

import (
	"fmt"
	"strings"
)

// StoreConfig points at the SQLite database.
type StoreConfig struct {
	DSN string `json:"dsn"`
}

func (c *StoreConfig) SetDefaults() {
	if c.DSN == "" {
		c.DSN = "fleetopt.db"
	}
}

func (c StoreConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

// APIConfig configures the HTTP API. An empty Token disables authentication.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	Token   string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c APIConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
