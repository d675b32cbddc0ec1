package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/infra/logger"
	"github.com/kilianp07/fleetopt/internal/eventbus"
)

// StartEventCollector subscribes to the cycle bus and records every event on
// the sink. Sinks implementing ReportRecorder also receive the report of
// successful cycles, and sinks implementing DropRecorder the events the bus
// dropped since the previous delivery. It stops when the context is canceled or the bus closed.
// The returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.CycleEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	drops, _ := sink.(coremetrics.DropRecorder)
	var seen uint64
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordCycle(ev); err != nil {
					log.Warnf("record cycle: %v", err)
				}
				if n := bus.Dropped(); n > seen {
					if drops != nil {
						if err := drops.RecordDropped(n - seen); err != nil {
							log.Warnf("record dropped events: %v", err)
						}
					}
					seen = n
				}
				if ev.Report == nil {
					continue
				}
				if r, ok := sink.(coremetrics.ReportRecorder); ok {
					if err := r.RecordReport(ev.Report); err != nil {
						log.Warnf("record report: %v", err)
					}
				}
			}
		}
	}()
	return done
}
