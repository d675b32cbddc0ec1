package optimizer

import "github.com/kilianp07/fleetopt/core/model"

// ApplyOverrides returns a copy of rules with the overrides applied. The
// input slice is never modified. An override naming an unknown rule adds a
// transient rule, enabled unless the override says otherwise.
func ApplyOverrides(rules []model.OptimizationRule, overrides []model.RuleOverride) []model.OptimizationRule {
	out := make([]model.OptimizationRule, len(rules))
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		out[i] = r
		if r.Metadata != nil {
			md := make(map[string]string, len(r.Metadata))
			for k, v := range r.Metadata {
				md[k] = v
			}
			out[i].Metadata = md
		}
		index[r.ID] = i
	}
	for _, o := range overrides {
		i, ok := index[o.RuleID]
		if !ok {
			out = append(out, model.OptimizationRule{ID: o.RuleID, Name: "simulation " + o.RuleID, Enabled: true})
			i = len(out) - 1
			index[o.RuleID] = i
		}
		r := &out[i]
		if o.Enabled != nil {
			r.Enabled = *o.Enabled
		}
		if o.RoutePattern != nil {
			r.RoutePattern = *o.RoutePattern
		}
		if o.Threshold != nil {
			r.Threshold = *o.Threshold
		}
		if o.AutoApply != nil {
			r.AutoApply = *o.AutoApply
		}
	}
	return out
}
