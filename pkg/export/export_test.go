package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

func sampleReport() *optimizer.Report {
	start := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	return &optimizer.Report{
		ID:          "rep-1",
		HorizonDays: 1,
		Forecast: []optimizer.DemandForecastEntry{
			{Date: "2025-01-02", Demand: 11, Confidence: 0.87, Drivers: optimizer.DemandDrivers{Weather: 0.03, Events: 0.04, Seasonality: 0.02}},
		},
		Heatmap: []optimizer.HeatmapEntry{
			{Route: "Paris -> Lyon", GeoZone: "PARIS", Occupancy: 0.95, AvgPrice: 25, DemandEstimate: 13, Reserved: 38, Capacity: 40, VehicleCount: 2},
		},
		Recommendations: []model.RecommendationSuggestion{
			{RouteFrom: "Paris", RouteTo: "Lyon", RecommendedStart: start, Priority: 7, Confidence: 0.875,
				RecommendedVehicleID: "v2", Reason: "saturation", Metadata: model.RecommendationMetadata{DonorTripID: "t2", RecipientTripID: "t1"}},
		},
	}
}

func TestWriteSuggestionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestionsCSV(&buf, sampleReport().Recommendations))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "route_from", rows[0][0])
	assert.Equal(t, []string{"Paris", "Lyon", "2025-01-02T08:00:00Z", "7", "0.875", "v2", "", "", "t2", "t1", "saturation"}, rows[1])
}

func TestWriteRecommendationsCSV(t *testing.T) {
	rec := model.Recommendation{
		ID:                       "rec-1",
		Status:                   model.StatusApproved,
		CreatedAt:                time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
		RecommendationSuggestion: sampleReport().Recommendations[0],
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, []model.Recommendation{rec}))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "status", "created_at"}, rows[0][:3])
	assert.Equal(t, []string{"rec-1", "approved", "2025-01-01T09:30:00Z", "Paris"}, rows[1][:4])
	assert.Len(t, rows[1], len(rows[0]))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatJSON, sampleReport()))
	var got optimizer.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "rep-1", got.ID)

	buf.Reset()
	require.NoError(t, WriteReport(&buf, FormatCSV, sampleReport()))
	sections := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	require.Len(t, sections, 3)
	assert.True(t, strings.HasPrefix(sections[0], "date,demand,confidence"))
	assert.Contains(t, sections[0], "2025-01-02,11,0.87,0.03,0.04,0,0.02")
	assert.True(t, strings.HasPrefix(sections[1], "route,geo_zone"))
	assert.Contains(t, sections[1], "Paris -> Lyon,PARIS,0.95,25,13,38,40,2")
	assert.True(t, strings.HasPrefix(sections[2], "route_from"))

	assert.Error(t, WriteReport(&buf, "xml", sampleReport()))
}
