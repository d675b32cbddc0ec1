package optimizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kilianp07/fleetopt/core/model"
)

// RouteBucket aggregates the trips sharing an origin and destination.
// TotalReserved may exceed TotalCapacity on overbooked routes.
type RouteBucket struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	TotalReserved int      `json:"total_reserved"`
	TotalCapacity int      `json:"total_capacity"`
	PriceSum      float64  `json:"price_sum"`
	TripCount     int      `json:"trip_count"`
	VehicleIDs    []string `json:"vehicle_ids"`
}

// Label renders the route as "Origin -> Destination".
func (b RouteBucket) Label() string { return RouteLabel(b.Origin, b.Destination) }

// Occupancy is reserved over capacity, or 0 without capacity.
func (b RouteBucket) Occupancy() float64 {
	if b.TotalCapacity <= 0 {
		return 0
	}
	return float64(b.TotalReserved) / float64(b.TotalCapacity)
}

// AvgPrice is the mean trip price, or 0 without trips.
func (b RouteBucket) AvgPrice() float64 {
	if b.TripCount == 0 {
		return 0
	}
	return b.PriceSum / float64(b.TripCount)
}

// RouteLabel formats a route label from its two ends.
func RouteLabel(origin, destination string) string {
	return origin + " -> " + destination
}

// Capitalize trims s and keeps only its first letter upper-cased.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

type routeKey struct{ origin, destination string }

// AggregateRoutes folds load factors into per-route buckets. The output is
// ordered by origin then destination so it does not depend on input order.
func AggregateRoutes(loadFactors []model.TripLoadFactor) []RouteBucket {
	buckets := make(map[routeKey]*RouteBucket)
	vehicles := make(map[routeKey]map[string]struct{})
	for _, lf := range loadFactors {
		k := routeKey{Capitalize(lf.Origin), Capitalize(lf.Destination)}
		b, ok := buckets[k]
		if !ok {
			b = &RouteBucket{Origin: k.origin, Destination: k.destination}
			buckets[k] = b
			vehicles[k] = make(map[string]struct{})
		}
		b.TotalReserved += lf.SeatsReserved
		b.TotalCapacity += lf.SeatCapacity
		b.PriceSum += lf.Price
		b.TripCount++
		if lf.VehicleID != "" {
			vehicles[k][lf.VehicleID] = struct{}{}
		}
	}
	out := make([]RouteBucket, 0, len(buckets))
	for k, b := range buckets {
		ids := make([]string, 0, len(vehicles[k]))
		for id := range vehicles[k] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b.VehicleIDs = ids
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Destination < out[j].Destination
	})
	return out
}
