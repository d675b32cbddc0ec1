package optimizer

import (
	"fmt"
	"math"

	"github.com/kilianp07/fleetopt/core/model"
)

// Alert severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert flags an anomaly on the predictive dashboard.
type Alert struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// OpportunityWindow is a time-boxed pricing opportunity on a route.
type OpportunityWindow struct {
	Route         string `json:"route"`
	Window        string `json:"window"`
	Action        string `json:"action"`
	GainPotential string `json:"gain_potential"`
}

// PredictiveDashboard summarises fleet stress.
type PredictiveDashboard struct {
	StressIndex        int                 `json:"stress_index"`
	Alerts             []Alert             `json:"alerts"`
	OpportunityWindows []OpportunityWindow `json:"opportunity_windows"`
}

// BuildDashboard combines open incidents, demand pressure and fleet risk into
// a stress index and derives alerts and opportunity windows.
func BuildDashboard(snap model.DashboardSnapshot, pricing []PricingInsight, maintenance MaintenanceInsight) PredictiveDashboard {
	pressure := 0.0
	if snap.TodayReservations > 4*snap.Trips {
		pressure = 25
	}
	components := float64(snap.OpenIncidents)*8 + pressure + float64(maintenance.FleetRiskIndex)*0.5
	stress := clampInt(int(math.Round(components/3)), 10, 100)

	alerts := []Alert{}
	if snap.OpenIncidents > 3 {
		alerts = append(alerts, Alert{
			ID:       "incident-peak",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d incidents are still open.", snap.OpenIncidents),
		})
	}
	for _, p := range pricing {
		if p.Action == ActionIncrease && p.Occupancy > 95 {
			alerts = append(alerts, Alert{
				ID:       "saturation",
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("%s is saturated at %.1f%%.", p.Route, p.Occupancy),
			})
			break
		}
	}

	windows := []OpportunityWindow{}
	for _, p := range pricing {
		switch p.Action {
		case ActionIncrease:
			windows = append(windows, OpportunityWindow{Route: p.Route, Window: "48h", Action: p.Action, GainPotential: "+6% margin"})
		case ActionDecrease:
			windows = append(windows, OpportunityWindow{Route: p.Route, Window: "72h", Action: p.Action, GainPotential: "+15% fill"})
		}
	}
	return PredictiveDashboard{StressIndex: stress, Alerts: alerts, OpportunityWindows: windows}
}
