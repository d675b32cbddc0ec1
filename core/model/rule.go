package model

import "regexp"

// DefaultRuleThreshold applies when a rule leaves Threshold unset.
//
// The threshold is compared with an occupancy ratio in [0,1], so a rule left
// at the default never qualifies a recipient. Rules that should fire must set
// an explicit ratio such as 0.85.
const DefaultRuleThreshold = 1.2

// OptimizationRule constrains which reallocation suggestions are attributed
// to an operator-defined policy.
type OptimizationRule struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Enabled       bool              `json:"enabled"`
	RoutePattern  string            `json:"route_pattern,omitempty"`
	Threshold     float64           `json:"threshold"`
	AutoApply     bool              `json:"auto_apply"`
	MinRestHours  float64           `json:"min_rest_hours"`
	ServiceWindow string            `json:"service_window,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EffectiveThreshold returns Threshold or DefaultRuleThreshold when unset.
func (r OptimizationRule) EffectiveThreshold() float64 {
	if r.Threshold <= 0 {
		return DefaultRuleThreshold
	}
	return r.Threshold
}

// Matches reports whether the route label satisfies RoutePattern, compared
// case-insensitively. An empty pattern matches everything and an invalid
// pattern matches nothing.
func (r OptimizationRule) Matches(label string) bool {
	if r.RoutePattern == "" {
		return true
	}
	re, err := regexp.Compile("(?i)" + r.RoutePattern)
	if err != nil {
		return false
	}
	return re.MatchString(label)
}

// Qualifies reports whether the rule applies to a recipient route with the
// given occupancy.
func (r OptimizationRule) Qualifies(label string, occupancy float64) bool {
	return r.Enabled && r.Matches(label) && occupancy >= r.EffectiveThreshold()
}

// RuleOverride replaces selected fields of a rule for a what-if run. Nil
// fields keep the stored value.
type RuleOverride struct {
	RuleID       string   `json:"rule_id"`
	Enabled      *bool    `json:"enabled,omitempty"`
	RoutePattern *string  `json:"route_pattern,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
	AutoApply    *bool    `json:"auto_apply,omitempty"`
}
