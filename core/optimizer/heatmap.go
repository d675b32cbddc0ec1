package optimizer

import (
	"math"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetopt/core/model"
)

// HeatmapEntry is one cell of the route by occupancy heatmap.
type HeatmapEntry struct {
	Route          string  `json:"route"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	Occupancy      float64 `json:"occupancy"`
	AvgPrice       float64 `json:"avg_price"`
	DemandEstimate int     `json:"demand_estimate"`
	Reserved       int     `json:"reserved"`
	Capacity       int     `json:"capacity"`
	GeoZone        string  `json:"geo_zone"`
	VehicleCount   int     `json:"vehicle_count"`
}

// BalanceKPIs measures how well capacity matches demand.
type BalanceKPIs struct {
	AverageOccupancy float64 `json:"average_occupancy"`
	UnmetDemand      int     `json:"unmet_demand"`
	BalanceScore     int     `json:"balance_score"`
	TotalCapacity    int     `json:"total_capacity"`
	ForecastDemand   int     `json:"forecast_demand"`
}

// BuildHeatmap renders one entry per aggregated route.
func BuildHeatmap(routes []RouteBucket, forecast []DemandForecastEntry) []HeatmapEntry {
	avgDemand := 0.0
	if len(forecast) > 0 {
		avgDemand = float64(totalDemand(forecast)) / float64(len(forecast))
	}
	out := make([]HeatmapEntry, 0, len(routes))
	for _, r := range routes {
		occ := r.Occupancy()
		out = append(out, HeatmapEntry{
			Route:          r.Label(),
			Origin:         r.Origin,
			Destination:    r.Destination,
			Occupancy:      roundTo(occ, 2),
			AvgPrice:       roundTo(r.AvgPrice(), 2),
			DemandEstimate: int(math.Round(avgDemand * occ)),
			Reserved:       r.TotalReserved,
			Capacity:       r.TotalCapacity,
			GeoZone:        geoZone(r.Origin),
			VehicleCount:   len(r.VehicleIDs),
		})
	}
	return out
}

// ComputeBalance derives the fleet balance KPIs. Without scheduled trips
// there is no capacity to compare against and unmet demand stays 0.
func ComputeBalance(loadFactors []model.TripLoadFactor, forecast []DemandForecastEntry) BalanceKPIs {
	occ := make([]float64, 0, len(loadFactors))
	capacity := 0
	for _, lf := range loadFactors {
		capacity += lf.SeatCapacity
		if lf.SeatCapacity > 0 {
			occ = append(occ, lf.Occupancy())
		}
	}
	avg := 0.0
	if len(occ) > 0 {
		avg = stat.Mean(occ, nil)
	}
	demand := totalDemand(forecast)
	unmet := 0
	if len(loadFactors) > 0 && demand > capacity {
		unmet = demand - capacity
	}
	return BalanceKPIs{
		AverageOccupancy: roundTo(avg, 3),
		UnmetDemand:      unmet,
		BalanceScore:     clampInt(int(math.Round(45+avg*55)), 0, 100),
		TotalCapacity:    capacity,
		ForecastDemand:   demand,
	}
}

// BuildHeatmapData computes the heatmap straight from a cycle context.
func BuildHeatmapData(c *Context) []HeatmapEntry {
	forecast := c.Forecast()
	return BuildHeatmap(AggregateRoutes(c.LoadFactors), forecast)
}

// ComputeBalanceKPIs computes the balance KPIs straight from a cycle context.
func ComputeBalanceKPIs(c *Context) BalanceKPIs {
	forecast := c.Forecast()
	return ComputeBalance(c.LoadFactors, forecast)
}

func totalDemand(forecast []DemandForecastEntry) int {
	xs := make([]float64, len(forecast))
	for i, f := range forecast {
		xs[i] = float64(f.Demand)
	}
	return int(floats.Sum(xs))
}

func geoZone(origin string) string {
	fields := strings.FieldsFunc(origin, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == ','
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
