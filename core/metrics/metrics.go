package metrics

import (
	"time"

	"github.com/kilianp07/fleetopt/core/optimizer"
)

// Cycle triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Cycle outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// CycleEvent describes one finished optimization cycle. Report is nil when
// the cycle failed before a report could be computed.
type CycleEvent struct {
	ReportID        string
	Trigger         string
	HorizonDays     int
	Duration        time.Duration
	Suggestions     int
	Persisted       int
	PersistFailures int
	Err             error
	Report          *optimizer.Report
	Time            time.Time
}

// Outcome labels the event for counters.
func (e CycleEvent) Outcome() string {
	if e.Err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// MetricsSink records optimization cycles.
type MetricsSink interface {
	RecordCycle(ev CycleEvent) error
}

// ReportRecorder records the figures of a computed report.
type ReportRecorder interface {
	RecordReport(r *optimizer.Report) error
}

// ReviewEvent captures an operator decision on a recommendation.
type ReviewEvent struct {
	RecommendationID string
	Status           string
	Time             time.Time
}

// ReviewRecorder records recommendation reviews.
type ReviewRecorder interface {
	RecordReview(ev ReviewEvent) error
}

// DropRecorder records cycle events the collector never received because
// its subscription was full.
type DropRecorder interface {
	RecordDropped(n uint64) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(CycleEvent) error         { return nil }
func (NopSink) RecordReport(*optimizer.Report) error { return nil }
func (NopSink) RecordReview(ReviewEvent) error       { return nil }
func (NopSink) RecordDropped(uint64) error           { return nil }
