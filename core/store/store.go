// Package store defines the persistence contracts consumed by the
// optimization engine. Implementations live under infra.
package store

import (
	"context"
	"errors"

	"github.com/kilianp07/fleetopt/core/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidTransition is returned when a review moves a recommendation
	// out of a final status.
	ErrInvalidTransition = errors.New("store: invalid status transition")
)

// Reader exposes the aggregates read at the start of every optimization cycle.
type Reader interface {
	// Trends returns one point per calendar day with activity over the
	// windowDays complete days before today, in ascending order.
	Trends(ctx context.Context, windowDays int) ([]model.TrendPoint, error)
	// LoadFactors returns the trips departing within the next horizonDays days.
	LoadFactors(ctx context.Context, horizonDays int) ([]model.TripLoadFactor, error)
	Vehicles(ctx context.Context) ([]model.Vehicle, error)
	// RecentIncidents returns at most limit incidents, newest first.
	RecentIncidents(ctx context.Context, limit int) ([]model.Incident, error)
	SearchPopularity(ctx context.Context) ([]model.SearchStat, error)
	DashboardSnapshot(ctx context.Context) (model.DashboardSnapshot, error)
}

// RuleStore reads and writes optimization rules.
type RuleStore interface {
	Rules(ctx context.Context) ([]model.OptimizationRule, error)
	UpsertRule(ctx context.Context, rule model.OptimizationRule) error
}

// RecommendationStore persists reallocation recommendations and their review.
type RecommendationStore interface {
	SaveRecommendation(ctx context.Context, rec model.Recommendation) error
	// ListRecommendations filters by status; an empty status returns all.
	ListRecommendations(ctx context.Context, status string) ([]model.Recommendation, error)
	UpdateRecommendationStatus(ctx context.Context, id, status string) error
}

// Store is the full persistence collaborator.
type Store interface {
	Reader
	RuleStore
	RecommendationStore
	Close() error
}
