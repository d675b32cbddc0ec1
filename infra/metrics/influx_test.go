package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

var errTest = errors.New("test failure")

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordCycle(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.CycleEvent{
		ReportID:        "r1",
		Trigger:         coremetrics.TriggerScheduled,
		HorizonDays:     7,
		Duration:        250 * time.Millisecond,
		Suggestions:     2,
		Persisted:       2,
		PersistFailures: 0,
		Time:            now,
	}
	if err := sink.RecordCycle(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("optimization_cycle").
		AddTag("trigger", "scheduled").
		AddTag("outcome", "success").
		AddTag("component", "scheduler").
		AddField("duration_ms", int64(250)).
		AddField("horizon_days", 7).
		AddField("suggestions", 2).
		AddField("persisted", 2).
		AddField("persist_failures", 0).
		SetTime(now).
		AddTag("report_id", "r1")
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %#v\nwant %s", got, expected)
	}
}

func TestInfluxSink_RecordReport(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	r := &optimizer.Report{
		ID:          "r1",
		GeneratedAt: now,
		Dashboard:   optimizer.PredictiveDashboard{StressIndex: 30},
		Pricing: []optimizer.PricingInsight{
			{Route: "Paris -> Lyon", Action: optimizer.ActionIncrease, Delta: 8, Occupancy: 95, RecommendedPrice: 27, Confidence: 0.9},
			{Route: "Nice -> Metz", Action: optimizer.ActionDecrease, Delta: -6, Occupancy: 20, RecommendedPrice: 14, Confidence: 0.45},
		},
	}
	if err := sink.RecordReport(r); err != nil {
		t.Fatalf("record report: %v", err)
	}
	got := bodies()
	if len(got) != 1 {
		t.Fatalf("expected a single batch, got %d", len(got))
	}
	lines := strings.Split(got[0], "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 points got %d: %s", len(lines), got[0])
	}
	if !strings.HasPrefix(lines[0], "fleet_status,report_id=r1 ") {
		t.Errorf("unexpected fleet line %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "route_pricing,") ||
		!strings.Contains(lines[1], `route=Paris\ ->\ Lyon`) ||
		!strings.Contains(lines[1], "action=augmenter") {
		t.Errorf("unexpected pricing line %s", lines[1])
	}
	if !strings.Contains(lines[2], "delta=-6i") {
		t.Errorf("unexpected pricing line %s", lines[2])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
