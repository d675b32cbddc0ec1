package optimizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/store"
)

const (
	// TrendWindowDays is the length of the reservation history fed to the forecaster.
	TrendWindowDays = 21
	// RunningAverageWindowDays is the history averaged for weekdays missing
	// from the trend window.
	RunningAverageWindowDays = 45
	// IncidentLimit caps the incidents read per cycle.
	IncidentLimit = 50

	DefaultHorizonDays = 7
	MinHorizonDays     = 1
	MaxHorizonDays     = 14
)

// Context is the raw material of one optimization cycle.
type Context struct {
	HorizonDays int
	Today       time.Time
	Trends      []model.TrendPoint
	LoadFactors []model.TripLoadFactor
	Vehicles    []model.Vehicle
	Incidents   []model.Incident
	Searches    []model.SearchStat
	Snapshot    model.DashboardSnapshot

	// RunningAverage is the mean daily reservation count over
	// RunningAverageWindowDays; 0 without history.
	RunningAverage float64
}

// ClampHorizon bounds h to [lo,hi]. Non-positive values select the default
// horizon before clamping.
func ClampHorizon(h, lo, hi int) int {
	if h <= 0 {
		h = DefaultHorizonDays
	}
	if h < lo {
		return lo
	}
	if h > hi {
		return hi
	}
	return h
}

// Assemble reads every input of a cycle concurrently. The first failing read
// cancels the others and its error is returned; no partial context is built.
func Assemble(ctx context.Context, src store.Reader, horizonDays int, now time.Time) (*Context, error) {
	if src == nil {
		return nil, fmt.Errorf("assemble: nil reader")
	}
	c := &Context{
		HorizonDays: ClampHorizon(horizonDays, MinHorizonDays, MaxHorizonDays),
		Today:       now,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if c.Trends, err = src.Trends(gctx, TrendWindowDays); err != nil {
			return fmt.Errorf("assemble trends: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		long, err := src.Trends(gctx, RunningAverageWindowDays)
		if err != nil {
			return fmt.Errorf("assemble running average: %w", err)
		}
		c.RunningAverage = RunningAverage(long)
		return nil
	})
	g.Go(func() error {
		var err error
		if c.LoadFactors, err = src.LoadFactors(gctx, c.HorizonDays); err != nil {
			return fmt.Errorf("assemble load factors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if c.Vehicles, err = src.Vehicles(gctx); err != nil {
			return fmt.Errorf("assemble vehicles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if c.Incidents, err = src.RecentIncidents(gctx, IncidentLimit); err != nil {
			return fmt.Errorf("assemble incidents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if c.Searches, err = src.SearchPopularity(gctx); err != nil {
			return fmt.Errorf("assemble search popularity: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if c.Snapshot, err = src.DashboardSnapshot(gctx); err != nil {
			return fmt.Errorf("assemble dashboard snapshot: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// Forecast runs the demand forecaster over the context.
func (c *Context) Forecast() []DemandForecastEntry {
	return ForecastDemand(c.Trends, c.RunningAverage, c.Searches, c.HorizonDays, c.Today)
}
