// Package export renders optimization results as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidateFormat rejects unknown formats.
func ValidateFormat(f string) error {
	if f != FormatJSON && f != FormatCSV {
		return fmt.Errorf("unknown format %q (want json or csv)", f)
	}
	return nil
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var suggestionHeader = []string{
	"route_from", "route_to", "recommended_start", "priority", "confidence",
	"vehicle_id", "driver_id", "matched_rule_id", "donor_trip_id", "recipient_trip_id", "reason",
}

func suggestionRow(s model.RecommendationSuggestion) []string {
	return []string{
		s.RouteFrom,
		s.RouteTo,
		s.RecommendedStart.UTC().Format(time.RFC3339),
		strconv.Itoa(s.Priority),
		strconv.FormatFloat(s.Confidence, 'f', -1, 64),
		s.RecommendedVehicleID,
		s.RecommendedDriverID,
		s.MatchedRuleID,
		s.Metadata.DonorTripID,
		s.Metadata.RecipientTripID,
		s.Reason,
	}
}

// WriteSuggestionsCSV writes the suggestions of a report.
func WriteSuggestionsCSV(w io.Writer, suggestions []model.RecommendationSuggestion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(suggestionHeader); err != nil {
		return err
	}
	for _, s := range suggestions {
		if err := cw.Write(suggestionRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecommendationsCSV writes persisted recommendations with their review
// status.
func WriteRecommendationsCSV(w io.Writer, recs []model.Recommendation) error {
	cw := csv.NewWriter(w)
	header := append([]string{"id", "status", "created_at"}, suggestionHeader...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := append([]string{r.ID, r.Status, r.CreatedAt.UTC().Format(time.RFC3339)}, suggestionRow(r.RecommendationSuggestion)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHeatmapCSV writes one line per route.
func WriteHeatmapCSV(w io.Writer, entries []optimizer.HeatmapEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"route", "geo_zone", "occupancy", "avg_price", "demand_estimate", "reserved", "capacity", "vehicle_count"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Route,
			e.GeoZone,
			strconv.FormatFloat(e.Occupancy, 'f', -1, 64),
			strconv.FormatFloat(e.AvgPrice, 'f', -1, 64),
			strconv.Itoa(e.DemandEstimate),
			strconv.Itoa(e.Reserved),
			strconv.Itoa(e.Capacity),
			strconv.Itoa(e.VehicleCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecastCSV writes the demand curve with its drivers.
func WriteForecastCSV(w io.Writer, entries []optimizer.DemandForecastEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "demand", "confidence", "weather", "events", "search", "seasonality"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, e := range entries {
		rec := []string{
			e.Date,
			strconv.Itoa(e.Demand),
			f(e.Confidence),
			f(e.Drivers.Weather),
			f(e.Drivers.Events),
			f(e.Drivers.Search),
			f(e.Drivers.Seasonality),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport writes a report. CSV output contains the forecast, the
// heatmap and the suggestions as three sections separated by a blank line.
func WriteReport(w io.Writer, format string, r *optimizer.Report) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if format == FormatJSON {
		return WriteJSON(w, r)
	}
	if err := WriteForecastCSV(w, r.Forecast); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := WriteHeatmapCSV(w, r.Heatmap); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteSuggestionsCSV(w, r.Recommendations)
}
