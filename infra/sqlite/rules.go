package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/fleetopt/core/model"
)

// Rules returns the optimization rules in creation order. The matcher
// attributes a suggestion to the first qualifying rule, so order matters.
func (s *Store) Rules(ctx context.Context) ([]model.OptimizationRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, enabled, route_pattern, threshold,
            auto_apply, min_rest_hours, service_window, metadata
        FROM optimization_rules ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.OptimizationRule
	for rows.Next() {
		var r model.OptimizationRule
		var enabled, autoApply int
		var meta string
		if err := rows.Scan(&r.ID, &r.Name, &enabled, &r.RoutePattern, &r.Threshold,
			&autoApply, &r.MinRestHours, &r.ServiceWindow, &meta); err != nil {
			return nil, err
		}
		r.Enabled = enabled != 0
		r.AutoApply = autoApply != 0
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
				return nil, fmt.Errorf("rule %s metadata: %w", r.ID, err)
			}
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// UpsertRule creates the rule or replaces every field of an existing one.
// The creation time of an existing rule is kept.
func (s *Store) UpsertRule(ctx context.Context, rule model.OptimizationRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	meta := []byte("{}")
	if len(rule.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(rule.Metadata); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO optimization_rules (id, name, enabled,
            route_pattern, threshold, auto_apply, min_rest_hours, service_window, metadata, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            enabled = excluded.enabled,
            route_pattern = excluded.route_pattern,
            threshold = excluded.threshold,
            auto_apply = excluded.auto_apply,
            min_rest_hours = excluded.min_rest_hours,
            service_window = excluded.service_window,
            metadata = excluded.metadata`,
		rule.ID, rule.Name, boolInt(rule.Enabled), rule.RoutePattern, rule.Threshold,
		boolInt(rule.AutoApply), rule.MinRestHours, rule.ServiceWindow, string(meta), s.now().UnixNano())
	return err
}
