package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/store"
)

// SaveRecommendation inserts one recommendation row. The suggestion itself
// is stored as JSON next to the columns used for filtering.
func (s *Store) SaveRecommendation(ctx context.Context, rec model.Recommendation) error {
	if rec.ID == "" {
		return fmt.Errorf("recommendation id is required")
	}
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	if err := model.ValidateStatus(rec.Status); err != nil {
		return err
	}
	payload, err := json.Marshal(rec.RecommendationSuggestion)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO optimization_recommendations
            (id, status, route_from, route_to, priority, created_at, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Status, rec.RouteFrom, rec.RouteTo, rec.Priority, rec.CreatedAt.UnixNano(), string(payload))
	return err
}

// ListRecommendations returns recommendations newest first, highest
// priority first within a cycle. An empty status returns every row.
func (s *Store) ListRecommendations(ctx context.Context, status string) ([]model.Recommendation, error) {
	query := `SELECT id, status, created_at, payload FROM optimization_recommendations`
	var args []any
	if status != "" {
		if err := model.ValidateStatus(status); err != nil {
			return nil, err
		}
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, priority DESC, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Recommendation
	for rows.Next() {
		var rec model.Recommendation
		var created int64
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Status, &created, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.RecommendationSuggestion); err != nil {
			return nil, fmt.Errorf("unmarshal recommendation %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateRecommendationStatus reviews a pending recommendation.
func (s *Store) UpdateRecommendationStatus(ctx context.Context, id, status string) error {
	if err := model.ValidateStatus(status); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM optimization_recommendations WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("recommendation %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !model.CanTransition(current, status) {
		return fmt.Errorf("recommendation %s %s -> %s: %w", id, current, status, store.ErrInvalidTransition)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE optimization_recommendations SET status = ?, reviewed_at = ? WHERE id = ?`,
		status, s.now().Unix(), id); err != nil {
		return err
	}
	return tx.Commit()
}
