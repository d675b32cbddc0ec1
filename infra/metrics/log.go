package metrics

import (
	"fmt"
	"strings"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/infra/logger"
)

// LogConfig configures the log sink. Level is "info" (default) or "debug".
type LogConfig struct {
	Level string `json:"level"`
}

// LogSink writes cycles, report figures and reviews to the structured log.
// It is meant for deployments without a metrics backend.
type LogSink struct {
	log   logger.Logger
	debug bool
}

// NewLogSink creates a LogSink writing through log.
func NewLogSink(cfg LogConfig, log logger.Logger) (*LogSink, error) {
	lvl := strings.ToLower(strings.TrimSpace(cfg.Level))
	switch lvl {
	case "", "info", "debug":
	default:
		return nil, fmt.Errorf("log sink: unsupported level %q", cfg.Level)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &LogSink{log: log, debug: lvl == "debug"}, nil
}

func (s *LogSink) RecordCycle(ev coremetrics.CycleEvent) error {
	fields := map[string]any{
		"report_id":        ev.ReportID,
		"trigger":          ev.Trigger,
		"outcome":          ev.Outcome(),
		"horizon_days":     ev.HorizonDays,
		"duration_ms":      ev.Duration.Milliseconds(),
		"suggestions":      ev.Suggestions,
		"persisted":        ev.Persisted,
		"persist_failures": ev.PersistFailures,
	}
	if ev.Err != nil {
		s.log.Errorw("optimization cycle", ev.Err, fields)
		return nil
	}
	if s.debug {
		s.log.Debugw("optimization cycle", fields)
		return nil
	}
	s.log.Infof("optimization cycle %s (%s): %d suggestions, %d persisted in %s",
		ev.ReportID, ev.Trigger, ev.Suggestions, ev.Persisted, ev.Duration)
	return nil
}

func (s *LogSink) RecordReport(r *optimizer.Report) error {
	if r == nil || !s.debug {
		return nil
	}
	s.log.Debugw("optimization report", map[string]any{
		"report_id":         r.ID,
		"stress_index":      r.Dashboard.StressIndex,
		"fleet_risk_index":  r.Maintenance.FleetRiskIndex,
		"balance_score":     r.Balance.BalanceScore,
		"average_occupancy": r.Balance.AverageOccupancy,
		"unmet_demand":      r.Balance.UnmetDemand,
	})
	return nil
}

func (s *LogSink) RecordReview(ev coremetrics.ReviewEvent) error {
	s.log.Infof("recommendation %s %s", ev.RecommendationID, ev.Status)
	return nil
}

func (s *LogSink) RecordDropped(n uint64) error {
	s.log.Warnf("%d cycle events dropped before reaching the metrics collector", n)
	return nil
}
