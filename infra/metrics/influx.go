package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes cycles and report figures to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCycle writes one optimization_cycle point.
func (s *InfluxSink) RecordCycle(ev coremetrics.CycleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimization_cycle").
		AddTag("trigger", ev.Trigger).
		AddTag("outcome", ev.Outcome()).
		AddTag("component", "scheduler").
		AddField("duration_ms", ev.Duration.Milliseconds()).
		AddField("horizon_days", ev.HorizonDays).
		AddField("suggestions", ev.Suggestions).
		AddField("persisted", ev.Persisted).
		AddField("persist_failures", ev.PersistFailures).
		SetTime(ev.Time)
	if ev.ReportID != "" {
		p = p.AddTag("report_id", ev.ReportID)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordReport writes the fleet figures and one route_pricing point per
// pricing insight.
func (s *InfluxSink) RecordReport(r *optimizer.Report) error {
	if r == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := []*write.Point{
		write.NewPointWithMeasurement("fleet_status").
			AddTag("report_id", r.ID).
			AddField("stress_index", r.Dashboard.StressIndex).
			AddField("fleet_risk_index", r.Maintenance.FleetRiskIndex).
			AddField("balance_score", r.Balance.BalanceScore).
			AddField("average_occupancy", round3(r.Balance.AverageOccupancy)).
			AddField("unmet_demand", r.Balance.UnmetDemand).
			SetTime(r.GeneratedAt),
	}
	for _, p := range r.Pricing {
		points = append(points, write.NewPointWithMeasurement("route_pricing").
			AddTag("route", p.Route).
			AddTag("action", p.Action).
			AddField("delta", p.Delta).
			AddField("occupancy", round3(p.Occupancy)).
			AddField("recommended_price", p.RecommendedPrice).
			AddField("confidence", round3(p.Confidence)).
			SetTime(r.GeneratedAt))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordReview writes a recommendation_review point.
func (s *InfluxSink) RecordReview(ev coremetrics.ReviewEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("recommendation_review").
		AddTag("status", ev.Status).
		AddField("recommendation_id", ev.RecommendationID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
