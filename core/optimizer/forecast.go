package optimizer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetopt/core/model"
)

// fallbackBaseline is the daily demand assumed without any history.
const fallbackBaseline = 45

const dayLayout = "2006-01-02"

// DemandDrivers are the additive multipliers applied to the baseline.
type DemandDrivers struct {
	Weather     float64 `json:"weather"`
	Events      float64 `json:"events"`
	Search      float64 `json:"search"`
	Seasonality float64 `json:"seasonality"`
}

func (d DemandDrivers) sum() float64 {
	return d.Weather + d.Events + d.Search + d.Seasonality
}

// DemandForecastEntry is the expected number of reservations on one day.
type DemandForecastEntry struct {
	Date       string        `json:"date"`
	Demand     int           `json:"demand"`
	Confidence float64       `json:"confidence"`
	Drivers    DemandDrivers `json:"drivers"`
}

// ForecastDemand projects daily reservations for the days following today.
// The baseline of each day is the mean of past days with the same weekday.
// Weekdays missing from trends use runningAverage, or fallbackBaseline when
// runningAverage is not positive.
func ForecastDemand(trends []model.TrendPoint, runningAverage float64, searches []model.SearchStat, horizonDays int, today time.Time) []DemandForecastEntry {
	horizonDays = ClampHorizon(horizonDays, MinHorizonDays, MaxHorizonDays)
	baselines := weekdayBaselines(trends)
	overall := runningAverage
	if overall <= 0 {
		overall = fallbackBaseline
	}
	share := topSearchShare(searches)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	out := make([]DemandForecastEntry, 0, horizonDays)
	for offset := 1; offset <= horizonDays; offset++ {
		date := start.AddDate(0, 0, offset)
		base, ok := baselines[date.Weekday()]
		if !ok {
			base = overall
		}
		drivers := DemandDrivers{
			Seasonality: seasonality(date.Weekday()),
			Weather:     weather(date.Month()),
			Events:      events(offset),
			Search:      share * searchWeight(offset),
		}
		demand := math.Round(math.Max(10, base*(1+drivers.sum())))
		out = append(out, DemandForecastEntry{
			Date:       date.Format(dayLayout),
			Demand:     int(demand),
			Confidence: forecastConfidence(offset, len(trends)),
			Drivers: DemandDrivers{
				Weather:     roundTo(drivers.Weather, 3),
				Events:      roundTo(drivers.Events, 3),
				Search:      roundTo(drivers.Search, 3),
				Seasonality: roundTo(drivers.Seasonality, 3),
			},
		})
	}
	return out
}

// RunningAverage is the mean daily reservation count of trends, or 0 when
// trends is empty.
func RunningAverage(trends []model.TrendPoint) float64 {
	if len(trends) == 0 {
		return 0
	}
	xs := make([]float64, len(trends))
	for i, t := range trends {
		xs[i] = float64(t.ReservationCount)
	}
	return stat.Mean(xs, nil)
}

func weekdayBaselines(trends []model.TrendPoint) map[time.Weekday]float64 {
	buckets := make(map[time.Weekday][]float64, 7)
	for _, t := range trends {
		day, err := time.Parse(dayLayout, t.Day)
		if err != nil {
			continue
		}
		buckets[day.Weekday()] = append(buckets[day.Weekday()], float64(t.ReservationCount))
	}
	means := make(map[time.Weekday]float64, len(buckets))
	for wd, xs := range buckets {
		means[wd] = stat.Mean(xs, nil)
	}
	return means
}

func topSearchShare(searches []model.SearchStat) float64 {
	total, top := 0, 0
	for _, s := range searches {
		if s.Count <= 0 {
			continue
		}
		total += s.Count
		if s.Count > top {
			top = s.Count
		}
	}
	if total == 0 {
		return 0
	}
	return math.Min(0.30, float64(top)/float64(total))
}

func seasonality(wd time.Weekday) float64 {
	switch wd {
	case time.Saturday, time.Sunday:
		return 0.12
	case time.Monday:
		return -0.05
	default:
		return 0.02
	}
}

func weather(m time.Month) float64 {
	if m >= time.June && m <= time.August {
		return 0.06
	}
	return 0.03
}

func events(offset int) float64 {
	if offset <= 3 {
		return 0.04
	}
	return 0.02
}

func searchWeight(offset int) float64 {
	if offset <= 3 {
		return 0.35
	}
	return 0.18
}

func forecastConfidence(offset, trendCount int) float64 {
	c := 0.82 - float64(offset)*0.03 + float64(trendCount)*0.004
	return roundTo(clamp(c, 0.5, 0.92), 2)
}
