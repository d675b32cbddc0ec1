package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/fleetopt/core/model"
)

const (
	recipientMinOccupancy = 0.85
	donorMaxOccupancy     = 0.60
	maxSuggestions        = 3
)

type enrichedTrip struct {
	model.TripLoadFactor
	occupancy float64
	route     routeKey
}

func (e enrichedTrip) label() string { return RouteLabel(e.route.origin, e.route.destination) }

// GenerateRecommendations pairs saturated recipient trips with under-used
// donor trips greedily. A donor is used at most once, never shares the
// recipient's vehicle and never serves the recipient's own route. Recipients
// left without a donor are skipped.
func GenerateRecommendations(loadFactors []model.TripLoadFactor, rules []model.OptimizationRule) []model.RecommendationSuggestion {
	var recipients, donors []enrichedTrip
	for _, lf := range loadFactors {
		if lf.SeatCapacity <= 0 || lf.Departure.IsZero() {
			continue
		}
		t := enrichedTrip{
			TripLoadFactor: lf,
			occupancy:      lf.Occupancy(),
			route:          routeKey{Capitalize(lf.Origin), Capitalize(lf.Destination)},
		}
		if t.occupancy >= recipientMinOccupancy {
			recipients = append(recipients, t)
		}
		if t.occupancy <= donorMaxOccupancy && t.VehicleID != "" {
			donors = append(donors, t)
		}
	}
	sort.SliceStable(recipients, func(i, j int) bool { return recipients[i].occupancy > recipients[j].occupancy })
	sort.SliceStable(donors, func(i, j int) bool { return donors[i].occupancy < donors[j].occupancy })

	out := []model.RecommendationSuggestion{}
	for _, rec := range recipients {
		if len(out) >= maxSuggestions {
			break
		}
		idx := -1
		for i, d := range donors {
			if d.VehicleID == rec.VehicleID || d.route == rec.route {
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			continue
		}
		donor := donors[idx]
		donors = append(donors[:idx], donors[idx+1:]...)
		out = append(out, suggest(rec, donor, matchRule(rules, rec)))
	}
	return out
}

// GenerateOperationalRecommendations runs the matcher on a cycle context.
func GenerateOperationalRecommendations(c *Context, rules []model.OptimizationRule) []model.RecommendationSuggestion {
	return GenerateRecommendations(c.LoadFactors, rules)
}

func matchRule(rules []model.OptimizationRule, rec enrichedTrip) *model.OptimizationRule {
	label := rec.label()
	for i := range rules {
		if rules[i].Qualifies(label, rec.occupancy) {
			return &rules[i]
		}
	}
	return nil
}

func suggest(rec, donor enrichedTrip, rule *model.OptimizationRule) model.RecommendationSuggestion {
	// Rounded so that gaps such as 0.95-0.30 scale to exactly 6.5.
	gap := roundTo(rec.occupancy-donor.occupancy, 6)
	s := model.RecommendationSuggestion{
		RouteFrom:        rec.route.origin,
		RouteTo:          rec.route.destination,
		RecommendedStart: rec.Departure,
		Narrative: fmt.Sprintf("Move vehicle %s from %s (%.0f%% full) to reinforce %s (%.0f%% full).",
			donorName(donor), donor.label(), donor.occupancy*100, rec.label(), rec.occupancy*100),
		Reason:               fmt.Sprintf("Occupancy gap of %.0f points between recipient and donor trips.", gap*100),
		Confidence:           roundTo(math.Min(0.95, 0.55+gap*0.5), 4),
		Priority:             int(math.Max(1, math.Round(math.Min(9, gap*10)))),
		RecommendedVehicleID: donor.VehicleID,
		RecommendedDriverID:  donor.DriverID,
		Metadata: model.RecommendationMetadata{
			Version:            model.MetadataVersion,
			RecipientTripID:    rec.TripID,
			DonorTripID:        donor.TripID,
			DonorRoute:         donor.label(),
			RecipientOccupancy: roundTo(rec.occupancy, 4),
			DonorOccupancy:     roundTo(donor.occupancy, 4),
		},
	}
	if rule != nil {
		s.MatchedRuleID = rule.ID
		s.Metadata.AutoApply = rule.AutoApply
		s.Metadata.MinRestHours = rule.MinRestHours
		s.Metadata.ServiceWindow = rule.ServiceWindow
		if rule.Name != "" {
			s.Metadata.Annotations = map[string]string{"rule_name": rule.Name}
		}
	}
	return s
}

func donorName(d enrichedTrip) string {
	if d.VehiclePlate != "" {
		return d.VehiclePlate
	}
	return d.VehicleID
}
