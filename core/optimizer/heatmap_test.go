package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetopt/core/model"
)

func TestComputeBalanceEmpty(t *testing.T) {
	k := ComputeBalance(nil, nil)
	assert.Equal(t, BalanceKPIs{BalanceScore: 45}, k)

	// forecast demand without trips never reports unmet demand
	k = ComputeBalance(nil, []DemandForecastEntry{{Demand: 40}, {Demand: 50}})
	assert.Equal(t, 0, k.UnmetDemand)
	assert.Equal(t, 90, k.ForecastDemand)
	assert.Equal(t, 45, k.BalanceScore)
}

func TestComputeBalance(t *testing.T) {
	lfs := []model.TripLoadFactor{
		trip("t1", "a", "b", 20, 20, "v1"),
		trip("t2", "a", "b", 10, 20, "v2"),
		trip("t3", "a", "b", 0, 0, "v3"),
	}
	k := ComputeBalance(lfs, []DemandForecastEntry{{Demand: 30}, {Demand: 25}})
	assert.Equal(t, 0.75, k.AverageOccupancy)
	assert.Equal(t, 40, k.TotalCapacity)
	assert.Equal(t, 55, k.ForecastDemand)
	assert.Equal(t, 15, k.UnmetDemand)
	assert.Equal(t, 86, k.BalanceScore) // 45 + 0.75*55 = 86.25
}

func TestBuildHeatmap(t *testing.T) {
	routes := AggregateRoutes([]model.TripLoadFactor{
		trip("t1", "saint denis", "paris", 15, 20, "v1"),
		trip("t2", "Aix-en-Provence", "nice", 5, 20, "v2"),
	})
	forecast := []DemandForecastEntry{{Demand: 40}, {Demand: 60}}
	heat := BuildHeatmap(routes, forecast)
	require.Len(t, heat, 2)

	assert.Equal(t, "Aix-en-provence -> Nice", heat[0].Route)
	assert.Equal(t, "AIX", heat[0].GeoZone)
	assert.Equal(t, 0.25, heat[0].Occupancy)
	assert.Equal(t, 13, heat[0].DemandEstimate) // 50 * 0.25 = 12.5

	assert.Equal(t, "SAINT", heat[1].GeoZone)
	assert.Equal(t, 38, heat[1].DemandEstimate) // 50 * 0.75 = 37.5
	assert.Equal(t, 20.0, heat[1].AvgPrice)
	assert.Equal(t, 1, heat[1].VehicleCount)
}

func TestHeatmapFromContext(t *testing.T) {
	c := &Context{HorizonDays: 7, Today: wednesday}
	assert.Empty(t, BuildHeatmapData(c))
	k := ComputeBalanceKPIs(c)
	assert.Equal(t, 0.0, k.AverageOccupancy)
	assert.Equal(t, 0, k.UnmetDemand)
	assert.Equal(t, 45, k.BalanceScore)
}
