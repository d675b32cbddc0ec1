package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `store:
  dsn: "file:fleet.db"
optimizer:
  enabled: true
  interval_minutes: 30
  horizon_days: 10
api:
  enabled: true
  token: "secret"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "ops/recs"
  qos:
    recommendation: 1
metrics:
  sinks:
    - type: "nop"
    - type: "prometheus"
archive:
  enabled: true
  path: "/var/lib/fleetopt/reports.jsonl"
  max_backups: 3
sentry:
  dsn: "https://key@sentry.example/1"
  environment: "staging"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"store.dsn", cfg.Store.DSN, "file:fleet.db"},
		{"optimizer.enabled", cfg.Optimizer.Enabled, true},
		{"optimizer.interval_minutes", cfg.Optimizer.IntervalMinutes, 30},
		{"optimizer.horizon_days", cfg.Optimizer.HorizonDays, 10},
		{"api.addr default", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "secret"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "ops/recs"},
		{"qos", cfg.MQTT.QoS["recommendation"], byte(1)},
		{"mqtt.max_retries default", cfg.MQTT.MaxRetries, 3},
		{"metrics_sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics.prometheus_addr default", cfg.Metrics.PrometheusAddr, ":9090"},
		{"archive.path", cfg.Archive.Path, "/var/lib/fleetopt/reports.jsonl"},
		{"archive.max_backups", cfg.Archive.MaxBackups, 3},
		{"archive.max_size_mb default", cfg.Archive.MaxSizeMB, 50},
		{"sentry.environment", cfg.Sentry.Environment, "staging"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.DSN != "fleetopt.db" {
		t.Errorf("dsn default: %s", cfg.Store.DSN)
	}
	if cfg.Optimizer.IntervalMinutes != 60 || cfg.Optimizer.HorizonDays != 7 {
		t.Errorf("optimizer defaults: %+v", cfg.Optimizer)
	}
	if cfg.Optimizer.Enabled || cfg.API.Enabled || cfg.MQTT.Enabled || cfg.Archive.Enabled {
		t.Errorf("optional components should be disabled by default")
	}
	if cfg.Metrics.PrometheusAddr != "" {
		t.Errorf("prometheus addr without sink: %s", cfg.Metrics.PrometheusAddr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  token: file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_API__TOKEN", "from-env")
	t.Setenv("K_STORE__DSN", "env.db")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.API.Token != "from-env" {
		t.Errorf("token override: %s", cfg.API.Token)
	}
	if cfg.Store.DSN != "env.db" {
		t.Errorf("dsn override: %s", cfg.Store.DSN)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"horizon.yaml": "optimizer:\n  horizon_days: 30\n",
		"mqtt.yaml":    "mqtt:\n  enabled: true\n",
		"metrics.yaml": "metrics:\n  sinks:\n    - conf: {}\n",
		"format.toml":  "",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
