package metrics

import (
	"errors"

	"github.com/kilianp07/fleetopt/core/optimizer"
)

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the event to every sink. All sinks are tried and the
// errors are joined.
func (m *MultiSink) RecordCycle(ev CycleEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordCycle(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordReport forwards the report to sinks supporting it.
func (m *MultiSink) RecordReport(r *optimizer.Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ReportRecorder); ok {
			if err := rec.RecordReport(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordReview forwards review events to sinks supporting them.
func (m *MultiSink) RecordReview(ev ReviewEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ReviewRecorder); ok {
			if err := rec.RecordReview(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordDropped forwards drop counts to sinks supporting them.
func (m *MultiSink) RecordDropped(n uint64) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(DropRecorder); ok {
			if err := rec.RecordDropped(n); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
