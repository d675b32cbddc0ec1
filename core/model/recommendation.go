package model

import (
	"fmt"
	"time"
)

// MetadataVersion is the current layout of RecommendationMetadata.
const MetadataVersion = 1

// Recommendation review states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// RecommendationMetadata carries the matching details behind a suggestion.
// Annotations is the only free-form part.
type RecommendationMetadata struct {
	Version            int               `json:"version"`
	RecipientTripID    string            `json:"recipient_trip_id"`
	DonorTripID        string            `json:"donor_trip_id"`
	DonorRoute         string            `json:"donor_route"`
	RecipientOccupancy float64           `json:"recipient_occupancy"`
	DonorOccupancy     float64           `json:"donor_occupancy"`
	AutoApply          bool              `json:"auto_apply"`
	MinRestHours       float64           `json:"min_rest_hours,omitempty"`
	ServiceWindow      string            `json:"service_window,omitempty"`
	Annotations        map[string]string `json:"annotations,omitempty"`
}

// RecommendationSuggestion proposes moving a donor vehicle onto a route
// under pressure.
type RecommendationSuggestion struct {
	RouteFrom            string                 `json:"route_from"`
	RouteTo              string                 `json:"route_to"`
	RecommendedStart     time.Time              `json:"recommended_start"`
	Narrative            string                 `json:"narrative"`
	Reason               string                 `json:"reason"`
	Confidence           float64                `json:"confidence"`
	Priority             int                    `json:"priority"`
	RecommendedVehicleID string                 `json:"recommended_vehicle_id,omitempty"`
	RecommendedDriverID  string                 `json:"recommended_driver_id,omitempty"`
	Metadata             RecommendationMetadata `json:"metadata"`
	MatchedRuleID        string                 `json:"matched_rule_id,omitempty"`
}

// Recommendation is a persisted suggestion awaiting review.
type Recommendation struct {
	RecommendationSuggestion
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CanTransition reports whether a review may move the recommendation from
// one status to another. Only pending recommendations can be reviewed.
func CanTransition(from, to string) bool {
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// ValidateStatus returns an error for unknown statuses.
func ValidateStatus(s string) error {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return nil
	default:
		return fmt.Errorf("unknown recommendation status %q", s)
	}
}
