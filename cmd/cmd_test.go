package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixtures(t *testing.T) (cfg, dataset string) {
	t.Helper()
	dir := t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("store:\n  dsn: "+filepath.Join(dir, "fleet.db")+"\n"), 0o600))

	dep := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	created := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	dataset = filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(dataset, []byte(`{
  "vehicles": [{"id": "v1", "plate": "AB-123", "capacity": 50}],
  "trips": [{"id": "t1", "origin": "Paris", "destination": "Lyon", "departure": "`+dep+`", "seat_capacity": 50, "vehicle_id": "v1"}],
  "reservations": [{"id": "r1", "trip_id": "t1", "seats": 45, "amount": 800, "created_at": "`+created+`"}],
  "rules": [{"id": "peak", "name": "Peak", "enabled": true, "threshold": 0.85}]
}`), 0o600))
	return cfg, dataset
}

func TestImportRulesAndReport(t *testing.T) {
	cfg, dataset := writeFixtures(t)

	out, err := execute(t, "import", dataset, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 vehicles, 1 trips")

	out, err = execute(t, "rules", "set", "-c", cfg, "--id", "coast", "--pattern", "nice", "--threshold", "0.7")
	require.NoError(t, err)
	assert.Contains(t, out, "rule coast saved")

	out, err = execute(t, "rules", "ls", "-c", cfg, "-f", "json")
	require.NoError(t, err)
	var rules []model.OptimizationRule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 2)
	ids := []string{rules[0].ID, rules[1].ID}
	assert.ElementsMatch(t, []string{"peak", "coast"}, ids)

	out, err = execute(t, "report", "-c", cfg, "--horizon", "3", "-f", "json")
	require.NoError(t, err)
	var rep optimizer.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 3, rep.HorizonDays)
	assert.Len(t, rep.Forecast, 3)

	out, err = execute(t, "report", "-c", cfg, "-f", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "date,"), out)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	cfg, _ := writeFixtures(t)
	_, err := execute(t, "report", "-c", cfg, "-f", "xml")
	assert.Error(t, err)
}

func TestReviewUnknownRecommendation(t *testing.T) {
	cfg, _ := writeFixtures(t)
	_, err := execute(t, "recs", "approve", "missing", "-c", cfg)
	assert.Error(t, err)
}

func TestSchedulerConfigOverridesOptimizer(t *testing.T) {
	cfg, _ := writeFixtures(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "scheduler.yaml")
	require.NoError(t, os.WriteFile(good, []byte("enabled: true\ninterval_minutes: 15\nhorizon_days: 5\n"), 0o600))
	bad := filepath.Join(dir, "scheduler.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"horizon_days": 30}`), 0o600))
	t.Cleanup(func() { schedulerPath = "" })

	_, err := execute(t, "rules", "ls", "-c", cfg, "--scheduler-config", good)
	require.NoError(t, err)
	loaded, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, loaded.Optimizer.Enabled)
	assert.Equal(t, 15, loaded.Optimizer.IntervalMinutes)
	assert.Equal(t, 5, loaded.Optimizer.HorizonDays)

	_, err = execute(t, "rules", "ls", "-c", cfg, "--scheduler-config", bad)
	assert.ErrorContains(t, err, "load scheduler config")
}
