package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetopt/core/logger"
	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/store"
)

// CycleStats describes how a report was produced and persisted.
type CycleStats struct {
	DurationMS      int64 `json:"duration_ms"`
	Persisted       int   `json:"persisted"`
	PersistFailures int   `json:"persist_failures"`
}

// Report is the full output of one optimization run.
type Report struct {
	ID              string                           `json:"id"`
	GeneratedAt     time.Time                        `json:"generated_at"`
	HorizonDays     int                              `json:"horizon_days"`
	Forecast        []DemandForecastEntry            `json:"forecast"`
	Pricing         []PricingInsight                 `json:"pricing"`
	Maintenance     MaintenanceInsight               `json:"maintenance"`
	Simulations     []ImpactSimulation               `json:"simulations"`
	Dashboard       PredictiveDashboard              `json:"dashboard"`
	Heatmap         []HeatmapEntry                   `json:"heatmap"`
	Balance         BalanceKPIs                      `json:"balance"`
	Recommendations []model.RecommendationSuggestion `json:"recommendations"`
	Stats           CycleStats                       `json:"stats"`
}

// Computation exposes the inputs and intermediate results behind a report.
type Computation struct {
	Context *Context
	Routes  []RouteBucket
	Rules   []model.OptimizationRule
	Report  *Report
}

// Engine computes reports from the data store.
type Engine struct {
	src   store.Reader
	rules store.RuleStore
	log   logger.Logger
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine. rules may be nil, in which case no rule is
// ever matched.
func NewEngine(src store.Reader, rules store.RuleStore, log logger.Logger, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("optimizer: nil reader provided to NewEngine")
	}
	e := &Engine{src: src, rules: rules, log: log, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time { return e.now() }

// ComputeReport assembles a fresh context and runs every step against the
// stored rules. It has no side effects.
func (e *Engine) ComputeReport(ctx context.Context, horizonDays int) (*Computation, error) {
	return e.compute(ctx, horizonDays, nil)
}

// Simulate computes a report with the overrides applied to the stored rules.
// Nothing is persisted.
func (e *Engine) Simulate(ctx context.Context, horizonDays int, overrides []model.RuleOverride) (*Computation, error) {
	return e.compute(ctx, horizonDays, overrides)
}

func (e *Engine) compute(ctx context.Context, horizonDays int, overrides []model.RuleOverride) (*Computation, error) {
	start := e.now()
	c, err := Assemble(ctx, e.src, horizonDays, start)
	if err != nil {
		return nil, err
	}
	var rules []model.OptimizationRule
	if e.rules != nil {
		if rules, err = e.rules.Rules(ctx); err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
	}
	if len(overrides) > 0 {
		rules = ApplyOverrides(rules, overrides)
	}

	routes := AggregateRoutes(c.LoadFactors)
	forecast := c.Forecast()
	pricing := PricingInsights(routes)
	maintenance := ScoreMaintenance(c.Vehicles, c.Incidents, c.LoadFactors, c.Today)
	report := &Report{
		ID:              uuid.NewString(),
		GeneratedAt:     start,
		HorizonDays:     c.HorizonDays,
		Forecast:        forecast,
		Pricing:         pricing,
		Maintenance:     maintenance,
		Simulations:     BuildSimulations(pricing, maintenance),
		Dashboard:       BuildDashboard(c.Snapshot, pricing, maintenance),
		Heatmap:         BuildHeatmap(routes, forecast),
		Balance:         ComputeBalance(c.LoadFactors, forecast),
		Recommendations: GenerateRecommendations(c.LoadFactors, rules),
	}
	report.Stats.DurationMS = e.now().Sub(start).Milliseconds()
	if e.log != nil {
		e.log.Debugw("report computed", map[string]any{
			"report_id":       report.ID,
			"horizon_days":    report.HorizonDays,
			"routes":          len(routes),
			"stress_index":    report.Dashboard.StressIndex,
			"recommendations": len(report.Recommendations),
		})
	}
	return &Computation{Context: c, Routes: routes, Rules: rules, Report: report}, nil
}
