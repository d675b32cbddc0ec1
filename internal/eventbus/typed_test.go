package eventbus

import (
	"testing"
	"time"

	"github.com/kilianp07/fleetopt/core/metrics"
)

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[metrics.CycleEvent]()
	ch := bus.Subscribe()
	bus.Publish(metrics.CycleEvent{ReportID: "r1", Trigger: metrics.TriggerManual, Time: time.Now()})
	v := <-ch
	if v.ReportID != "r1" || v.Trigger != metrics.TriggerManual {
		t.Fatalf("unexpected event %+v", v)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(1)
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close must return a closed channel")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTypedWithBuffer[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if len(ch) != 2 {
		t.Fatalf("expected 2 buffered events got %d", len(ch))
	}
	if bus.Dropped() != 3 {
		t.Fatalf("expected 3 dropped got %d", bus.Dropped())
	}
	if <-ch != 0 || <-ch != 1 {
		t.Fatalf("events out of order")
	}
}
