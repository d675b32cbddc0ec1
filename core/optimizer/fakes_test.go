package optimizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kilianp07/fleetopt/core/model"
)

type fakeReader struct {
	trends      []model.TrendPoint
	loadFactors []model.TripLoadFactor
	vehicles    []model.Vehicle
	incidents   []model.Incident
	searches    []model.SearchStat
	snapshot    model.DashboardSnapshot
	failOn      string

	horizonSeen int

	mu      sync.Mutex
	windows []int
}

var errUnreachable = errors.New("store unreachable")

func (f *fakeReader) fail(part string) error {
	if f.failOn == part {
		return errUnreachable
	}
	return nil
}

func (f *fakeReader) Trends(_ context.Context, window int) ([]model.TrendPoint, error) {
	f.mu.Lock()
	f.windows = append(f.windows, window)
	f.mu.Unlock()
	return f.trends, f.fail("trends")
}

func (f *fakeReader) LoadFactors(_ context.Context, h int) ([]model.TripLoadFactor, error) {
	f.horizonSeen = h
	return f.loadFactors, f.fail("load")
}

func (f *fakeReader) Vehicles(context.Context) ([]model.Vehicle, error) {
	return f.vehicles, f.fail("vehicles")
}

func (f *fakeReader) RecentIncidents(_ context.Context, _ int) ([]model.Incident, error) {
	return f.incidents, f.fail("incidents")
}

func (f *fakeReader) SearchPopularity(context.Context) ([]model.SearchStat, error) {
	return f.searches, f.fail("search")
}

func (f *fakeReader) DashboardSnapshot(context.Context) (model.DashboardSnapshot, error) {
	return f.snapshot, f.fail("snapshot")
}

type fakeRules struct {
	rules []model.OptimizationRule
	err   error
}

func (f *fakeRules) Rules(context.Context) ([]model.OptimizationRule, error) { return f.rules, f.err }
func (f *fakeRules) UpsertRule(context.Context, model.OptimizationRule) error {
	return nil
}

// constantTrends returns days consecutive days ending the day before end.
func constantTrends(end time.Time, days, count int) []model.TrendPoint {
	out := make([]model.TrendPoint, 0, days)
	for i := days; i >= 1; i-- {
		out = append(out, model.TrendPoint{
			Day:              end.AddDate(0, 0, -i).Format("2006-01-02"),
			ReservationCount: count,
		})
	}
	return out
}

func trip(id, origin, dest string, reserved, capacity int, vehicle string) model.TripLoadFactor {
	return model.TripLoadFactor{
		TripID:        id,
		Origin:        origin,
		Destination:   dest,
		Departure:     time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC),
		SeatCapacity:  capacity,
		SeatsReserved: reserved,
		Price:         20,
		Status:        "scheduled",
		VehicleID:     vehicle,
	}
}
