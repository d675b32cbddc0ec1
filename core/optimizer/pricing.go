package optimizer

import (
	"math"
	"sort"
)

// Pricing actions. The values are the labels stored and displayed by the
// back office.
const (
	ActionIncrease = "augmenter"
	ActionDecrease = "baisser"
	ActionHold     = "stabiliser"
)

const maxPricingInsights = 4

// PricingInsight is the dynamic pricing guidance for one route.
type PricingInsight struct {
	Route            string  `json:"route"`
	Action           string  `json:"action"`
	Delta            int     `json:"delta"`
	Occupancy        float64 `json:"occupancy"`
	RecommendedPrice int     `json:"recommended_price"`
	Rationale        string  `json:"rationale"`
	Confidence       float64 `json:"confidence"`
}

// PricingInsights emits guidance for the routes, strongest price moves first.
// Routes with equal moves keep their aggregation order.
func PricingInsights(routes []RouteBucket) []PricingInsight {
	out := make([]PricingInsight, 0, len(routes))
	for _, r := range routes {
		occ := r.Occupancy()
		action, delta := priceAction(occ)
		out = append(out, PricingInsight{
			Route:            r.Label(),
			Action:           action,
			Delta:            delta,
			Occupancy:        roundTo(occ*100, 1),
			RecommendedPrice: int(math.Round(r.AvgPrice() * (1 + float64(delta)/100))),
			Rationale:        rationale(action),
			Confidence:       roundTo(clamp(occ*0.8+0.2, 0.45, 0.9), 2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return absInt(out[i].Delta) > absInt(out[j].Delta)
	})
	if len(out) > maxPricingInsights {
		out = out[:maxPricingInsights]
	}
	return out
}

func priceAction(occ float64) (string, int) {
	switch {
	case occ >= 0.90:
		return ActionIncrease, 8
	case occ <= 0.50:
		return ActionDecrease, -6
	default:
		return ActionHold, 0
	}
}

func rationale(action string) string {
	switch action {
	case ActionIncrease:
		return "Demand saturates the route; a moderate increase protects margin without losing riders."
	case ActionDecrease:
		return "Seats remain unsold; a targeted discount should lift the fill rate."
	default:
		return "Occupancy is balanced; keep the current fare."
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
