package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

// PromSink exposes optimization cycles and report figures as Prometheus
// metrics.
type PromSink struct {
	cycles          *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	suggestions     prometheus.Counter
	persistFailures prometheus.Counter
	reviews         *prometheus.CounterVec
	stress          prometheus.Gauge
	fleetRisk       prometheus.Gauge
	balance         prometheus.Gauge
	occupancy       prometheus.Gauge
	unmetDemand     prometheus.Gauge
	pricingActions  *prometheus.GaugeVec
	droppedEvents   prometheus.Counter
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optimization_cycles_total",
			Help: "Optimization cycles by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optimization_cycle_duration_seconds",
			Help:    "Wall time of optimization cycles",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimization_suggestions_total",
			Help: "Reallocation suggestions produced by cycles",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimization_persist_failures_total",
			Help: "Recommendations that could not be saved",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optimization_reviews_total",
			Help: "Recommendation reviews by resulting status",
		}, []string{"status"}),
		stress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_stress_index",
			Help: "Stress index of the latest report",
		}),
		fleetRisk: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_risk_index",
			Help: "Average maintenance risk score of the fleet",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_balance_score",
			Help: "Capacity to demand balance score",
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_average_occupancy_ratio",
			Help: "Average occupancy of scheduled trips",
		}),
		unmetDemand: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_unmet_demand_seats",
			Help: "Forecast demand not covered by scheduled capacity",
		}),
		pricingActions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricing_insights",
			Help: "Pricing insights of the latest report by action",
		}, []string{"action"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimization_events_dropped_total",
			Help: "Cycle events lost because the collector fell behind",
		}),
	}

	var err error
	if s.cycles, err = register(reg, s.cycles); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.suggestions, err = register(reg, s.suggestions); err != nil {
		return nil, err
	}
	if s.persistFailures, err = register(reg, s.persistFailures); err != nil {
		return nil, err
	}
	if s.reviews, err = register(reg, s.reviews); err != nil {
		return nil, err
	}
	if s.stress, err = register(reg, s.stress); err != nil {
		return nil, err
	}
	if s.fleetRisk, err = register(reg, s.fleetRisk); err != nil {
		return nil, err
	}
	if s.balance, err = register(reg, s.balance); err != nil {
		return nil, err
	}
	if s.occupancy, err = register(reg, s.occupancy); err != nil {
		return nil, err
	}
	if s.unmetDemand, err = register(reg, s.unmetDemand); err != nil {
		return nil, err
	}
	if s.pricingActions, err = register(reg, s.pricingActions); err != nil {
		return nil, err
	}
	if s.droppedEvents, err = register(reg, s.droppedEvents); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered by
// an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle counts the cycle and observes its duration.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	trigger := ev.Trigger
	if trigger == "" {
		trigger = coremetrics.TriggerManual
	}
	s.cycles.WithLabelValues(trigger, ev.Outcome()).Inc()
	s.duration.WithLabelValues(trigger).Observe(ev.Duration.Seconds())
	s.suggestions.Add(float64(ev.Suggestions))
	s.persistFailures.Add(float64(ev.PersistFailures))
	return nil
}

// RecordReport sets the fleet gauges from the report.
func (s *PromSink) RecordReport(r *optimizer.Report) error {
	if r == nil {
		return nil
	}
	s.stress.Set(float64(r.Dashboard.StressIndex))
	s.fleetRisk.Set(float64(r.Maintenance.FleetRiskIndex))
	s.balance.Set(float64(r.Balance.BalanceScore))
	s.occupancy.Set(r.Balance.AverageOccupancy)
	s.unmetDemand.Set(float64(r.Balance.UnmetDemand))
	s.pricingActions.Reset()
	for _, action := range []string{optimizer.ActionIncrease, optimizer.ActionDecrease, optimizer.ActionHold} {
		s.pricingActions.WithLabelValues(action).Set(0)
	}
	for _, p := range r.Pricing {
		s.pricingActions.WithLabelValues(p.Action).Inc()
	}
	return nil
}

// RecordReview counts a recommendation review.
func (s *PromSink) RecordReview(ev coremetrics.ReviewEvent) error {
	s.reviews.WithLabelValues(ev.Status).Inc()
	return nil
}

// RecordDropped counts cycle events the collector missed.
func (s *PromSink) RecordDropped(n uint64) error {
	s.droppedEvents.Add(float64(n))
	return nil
}
