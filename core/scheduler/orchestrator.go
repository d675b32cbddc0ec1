package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetopt/core/logger"
	"github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/monitoring"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/core/store"
)

// ErrCycleInFlight is returned by RunCycle while another cycle is running.
var ErrCycleInFlight = errors.New("optimization cycle already running")

// CycleEvent is published after every cycle.
type CycleEvent = metrics.CycleEvent

// maxConcurrentWrites bounds the recommendation writes of one cycle.
const maxConcurrentWrites = 8

// ReportComputer computes optimization reports. *optimizer.Engine
// implements it.
type ReportComputer interface {
	ComputeReport(ctx context.Context, horizonDays int) (*optimizer.Computation, error)
	Simulate(ctx context.Context, horizonDays int, overrides []model.RuleOverride) (*optimizer.Computation, error)
}

// Notifier is told about every completed cycle with the recommendations
// that were persisted.
type Notifier interface {
	Notify(ctx context.Context, report *optimizer.Report, recs []model.Recommendation) error
}

// EventPublisher receives cycle events.
type EventPublisher interface {
	Publish(ev CycleEvent)
}

// Orchestrator runs optimization cycles on demand or on a timer.
type Orchestrator struct {
	engine     ReportComputer
	recs       store.RecommendationStore
	log        logger.Logger
	events     EventPublisher
	notifiers  []Notifier
	onComputed func(*optimizer.Computation)

	latest   atomic.Pointer[optimizer.Report]
	inFlight atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEvents publishes a CycleEvent after every cycle.
func WithEvents(p EventPublisher) Option {
	return func(o *Orchestrator) { o.events = p }
}

// WithNotifiers adds cycle notifiers.
func WithNotifiers(n ...Notifier) Option {
	return func(o *Orchestrator) { o.notifiers = append(o.notifiers, n...) }
}

// WithCompletionCallback is invoked with the full computation behind every
// report computed by the orchestrator.
func WithCompletionCallback(fn func(*optimizer.Computation)) Option {
	return func(o *Orchestrator) { o.onComputed = fn }
}

// New creates an Orchestrator. recs may be nil, in which case suggestions are
// not persisted.
func New(engine ReportComputer, recs store.RecommendationStore, log logger.Logger, opts ...Option) (*Orchestrator, error) {
	if engine == nil {
		return nil, fmt.Errorf("scheduler: nil engine provided to New")
	}
	if log == nil {
		log = logger.Nop{}
	}
	o := &Orchestrator{engine: engine, recs: recs, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ComputeReport computes a report without persisting anything.
func (o *Orchestrator) ComputeReport(ctx context.Context, horizonDays int) (*optimizer.Report, error) {
	comp, err := o.engine.ComputeReport(ctx, horizonDays)
	if err != nil {
		return nil, err
	}
	if o.onComputed != nil {
		o.onComputed(comp)
	}
	return comp.Report, nil
}

// Simulate computes a report with rule overrides. Nothing is persisted and
// the latest report is left untouched.
func (o *Orchestrator) Simulate(ctx context.Context, horizonDays int, overrides []model.RuleOverride) (*optimizer.Report, error) {
	comp, err := o.engine.Simulate(ctx, horizonDays, overrides)
	if err != nil {
		return nil, err
	}
	return comp.Report, nil
}

// RunCycle computes a report, persists its suggestions and caches it as the
// latest report. It returns ErrCycleInFlight when a cycle is already running.
func (o *Orchestrator) RunCycle(ctx context.Context, horizonDays int) (*optimizer.Report, error) {
	return o.runCycle(ctx, horizonDays, metrics.TriggerManual)
}

// LatestReport returns the report of the last successful cycle, or nil.
func (o *Orchestrator) LatestReport() *optimizer.Report {
	return o.latest.Load()
}

func (o *Orchestrator) runCycle(ctx context.Context, horizonDays int, trigger string) (*optimizer.Report, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCycleInFlight
	}
	defer o.inFlight.Store(false)

	start := time.Now()
	report, err := o.ComputeReport(ctx, horizonDays)
	if err != nil {
		o.publish(CycleEvent{
			Trigger:     trigger,
			HorizonDays: horizonDays,
			Duration:    time.Since(start),
			Err:         err,
			Time:        time.Now(),
		})
		return nil, fmt.Errorf("compute report: %w", err)
	}

	saved, failures := o.persist(ctx, report)
	report.Stats.Persisted = len(saved)
	report.Stats.PersistFailures = failures
	report.Stats.DurationMS = time.Since(start).Milliseconds()
	o.latest.Store(report)

	for _, n := range o.notifiers {
		if err := n.Notify(ctx, report, saved); err != nil {
			o.log.Errorw("cycle notifier failed", err, map[string]any{"report_id": report.ID})
			monitoring.CaptureException(err, map[string]string{"component": "scheduler", "stage": "notify"})
		}
	}
	o.publish(CycleEvent{
		ReportID:        report.ID,
		Trigger:         trigger,
		HorizonDays:     report.HorizonDays,
		Duration:        time.Since(start),
		Suggestions:     len(report.Recommendations),
		Persisted:       len(saved),
		PersistFailures: failures,
		Report:          report,
		Time:            time.Now(),
	})
	o.log.Infof("optimization cycle %s done: %d suggestions, %d persisted, %d failed",
		report.ID, len(report.Recommendations), len(saved), failures)
	return report, nil
}

// persist saves every suggestion concurrently. A failed write is logged and
// counted; it never fails the cycle.
func (o *Orchestrator) persist(ctx context.Context, report *optimizer.Report) ([]model.Recommendation, int) {
	if o.recs == nil || len(report.Recommendations) == 0 {
		return []model.Recommendation{}, 0
	}
	results := make([]*model.Recommendation, len(report.Recommendations))
	var failures atomic.Int32
	var g errgroup.Group
	g.SetLimit(maxConcurrentWrites)
	for i, s := range report.Recommendations {
		rec := model.Recommendation{
			RecommendationSuggestion: s,
			ID:                       uuid.NewString(),
			Status:                   model.StatusPending,
			CreatedAt:                report.GeneratedAt,
		}
		g.Go(func() error {
			if err := o.recs.SaveRecommendation(ctx, rec); err != nil {
				failures.Add(1)
				o.log.Errorw("persist recommendation", err, map[string]any{
					"report_id":  report.ID,
					"vehicle_id": rec.RecommendedVehicleID,
				})
				return nil
			}
			results[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	saved := make([]model.Recommendation, 0, len(results))
	for _, r := range results {
		if r != nil {
			saved = append(saved, *r)
		}
	}
	return saved, int(failures.Load())
}

func (o *Orchestrator) publish(ev CycleEvent) {
	if o.events != nil {
		o.events.Publish(ev)
	}
}

// Start fires a cycle every interval until ctx is canceled or Stop is called.
// It returns false when the scheduler is already running. A tick arriving
// while a cycle is in flight is skipped.
func (o *Orchestrator) Start(ctx context.Context, interval time.Duration, horizonDays int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return false
	}
	if interval <= 0 {
		interval = DefaultIntervalMinutes * time.Minute
	}
	cctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.wg.Add(1)
	go o.loop(cctx, interval, horizonDays)
	o.log.Infof("scheduler started: every %s, horizon %d days", interval, horizonDays)
	return true
}

// Stop cancels the timer and waits for running cycles to return.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	o.wg.Wait()
}

// Running reports whether the timer is active.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancel != nil
}

func (o *Orchestrator) loop(ctx context.Context, interval time.Duration, horizonDays int) {
	defer o.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if o.inFlight.Load() {
				o.log.Warnf("previous optimization cycle still running, tick skipped")
				continue
			}
			o.wg.Add(1)
			go o.tick(ctx, horizonDays)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context, horizonDays int) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("optimization cycle panic: %v", r)
			o.log.Errorw("scheduled cycle panicked", err, nil)
			monitoring.CaptureException(err, map[string]string{"component": "scheduler"})
		}
	}()
	_, err := o.runCycle(ctx, horizonDays, metrics.TriggerScheduled)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInFlight):
		o.log.Warnf("previous optimization cycle still running, tick skipped")
	default:
		o.log.Errorw("scheduled cycle failed", err, map[string]any{"horizon_days": horizonDays})
		monitoring.CaptureException(err, map[string]string{"component": "scheduler"})
	}
}
