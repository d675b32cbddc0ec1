package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/internal/eventbus"
)

type recordingSink struct {
	mu      sync.Mutex
	cycles  []coremetrics.CycleEvent
	reports []*optimizer.Report
}

func (r *recordingSink) RecordCycle(ev coremetrics.CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = append(r.cycles, ev)
	return nil
}

func (r *recordingSink) RecordReport(rep *optimizer.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cycles), len(r.reports)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[coremetrics.CycleEvent]()
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(coremetrics.CycleEvent{ReportID: "r1", Report: &optimizer.Report{ID: "r1"}})
	bus.Publish(coremetrics.CycleEvent{Err: errTest})

	deadline := time.After(time.Second)
	for {
		cycles, reports := sink.counts()
		if cycles == 2 {
			if reports != 1 {
				t.Fatalf("expected 1 report got %d", reports)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("events not collected: %d cycles", cycles)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("collector did not stop")
	}
}

func TestStartEventCollectorNilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, &recordingSink{})
	if _, ok := <-done; ok {
		t.Fatalf("expected closed channel")
	}
}

type stallingSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu      sync.Mutex
	cycles  int
	dropped uint64
}

func (s *stallingSink) RecordCycle(coremetrics.CycleEvent) error {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	return nil
}

func (s *stallingSink) RecordDropped(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped += n
	return nil
}

func (s *stallingSink) counts() (int, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles, s.dropped
}

func TestStartEventCollectorReportsDrops(t *testing.T) {
	bus := eventbus.NewTypedWithBuffer[coremetrics.CycleEvent](1)
	sink := &stallingSink{entered: make(chan struct{}), release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(coremetrics.CycleEvent{ReportID: "r1"})
	select {
	case <-sink.entered:
	case <-time.After(time.Second):
		t.Fatalf("first event not delivered")
	}
	// one queued, two dropped
	bus.Publish(coremetrics.CycleEvent{ReportID: "r2"})
	bus.Publish(coremetrics.CycleEvent{ReportID: "r3"})
	bus.Publish(coremetrics.CycleEvent{ReportID: "r4"})
	close(sink.release)

	deadline := time.After(time.Second)
	for {
		cycles, dropped := sink.counts()
		if cycles == 2 {
			if dropped != 2 {
				t.Fatalf("expected 2 dropped events got %d", dropped)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("events not collected: %d cycles", cycles)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
