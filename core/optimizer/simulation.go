package optimizer

import (
	"fmt"
	"math"
)

// ImpactSimulation is a what-if scenario derived from the strongest signals.
type ImpactSimulation struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ExpectedGain float64 `json:"expected_gain"`
	Cost         float64 `json:"cost"`
	Confidence   float64 `json:"confidence"`
	Summary      string  `json:"summary"`
}

// BuildSimulations evaluates the scenario cascade: extra rotation on a
// saturated route, flash discount on an empty one, inspection of the
// riskiest vehicle. A stable scenario is returned when nothing triggers.
func BuildSimulations(pricing []PricingInsight, maintenance MaintenanceInsight) []ImpactSimulation {
	var out []ImpactSimulation
	if p, ok := firstWithAction(pricing, ActionIncrease); ok {
		price := float64(p.RecommendedPrice)
		out = append(out, ImpactSimulation{
			ID:           "sim-rotation",
			Title:        "Extra rotation on " + p.Route,
			ExpectedGain: price * 12,
			Cost:         math.Round(price * 4),
			Confidence:   p.Confidence,
			Summary:      fmt.Sprintf("Route at %.1f%% occupancy; adding a departure absorbs the overflow.", p.Occupancy),
		})
	}
	if p, ok := firstWithAction(pricing, ActionDecrease); ok {
		price := float64(p.RecommendedPrice)
		out = append(out, ImpactSimulation{
			ID:           "sim-discount",
			Title:        "Flash discount on " + p.Route,
			ExpectedGain: price * 8,
			Cost:         math.Round(price * 2),
			Confidence:   p.Confidence,
			Summary:      fmt.Sprintf("Route at %.1f%% occupancy; a %d%% fare cut targets idle seats.", p.Occupancy, p.Delta),
		})
	}
	if len(maintenance.Vehicles) > 0 {
		v := maintenance.Vehicles[0]
		out = append(out, ImpactSimulation{
			ID:           "sim-maintenance",
			Title:        "Preventive inspection of " + vehicleName(v),
			ExpectedGain: float64(v.RiskScore) * 10,
			Cost:         150,
			Confidence:   roundTo(math.Min(0.9, float64(v.RiskScore)/100+0.1), 2),
			Summary:      fmt.Sprintf("Risk score %d (%s) with %d recent incidents.", v.RiskScore, v.RiskLabel, v.IncidentCount),
		})
	}
	if len(out) == 0 {
		out = append(out, ImpactSimulation{
			ID:         "sim-stable",
			Title:      "Stable scenario",
			Confidence: 0.6,
			Summary:    "No pricing or maintenance signal requires action.",
		})
	}
	return out
}

func firstWithAction(pricing []PricingInsight, action string) (PricingInsight, bool) {
	for _, p := range pricing {
		if p.Action == action {
			return p, true
		}
	}
	return PricingInsight{}, false
}

func vehicleName(v VehicleRisk) string {
	if v.Plate != "" {
		return v.Plate
	}
	return v.VehicleID
}
