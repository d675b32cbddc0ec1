package optimization

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

// Insights is the predictive part of a report.
type Insights struct {
	ReportID    string                          `json:"report_id"`
	GeneratedAt string                          `json:"generated_at"`
	HorizonDays int                             `json:"horizon_days"`
	Forecast    []optimizer.DemandForecastEntry `json:"forecast"`
	Pricing     []optimizer.PricingInsight      `json:"pricing"`
	Maintenance optimizer.MaintenanceInsight    `json:"maintenance"`
	Simulations []optimizer.ImpactSimulation    `json:"simulations"`
	Dashboard   optimizer.PredictiveDashboard   `json:"dashboard"`
}

// SimulateRequest is the body of POST /simulate.
type SimulateRequest struct {
	HorizonDays int                  `json:"horizon_days"`
	Overrides   []model.RuleOverride `json:"overrides"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"state": "ok"})
}

func (h *Handler) failure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, msg := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("http operation failed", err, map[string]any{
			"operation":  op,
			"request_id": requestIDFromContext(r.Context()),
		})
	}
	writeError(w, status, code, msg)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request, lo int) (*optimizer.Report, bool) {
	rep, err := h.svc.ComputeReport(r.Context(), horizon(r, lo))
	if err != nil {
		h.failure(w, r, "compute_report", err)
		return nil, false
	}
	return rep, true
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.compute(w, r, MinInsightHorizon); ok {
		writeSuccess(w, http.StatusOK, rep)
	}
}

func (h *Handler) latest(w http.ResponseWriter, _ *http.Request) {
	rep := h.svc.LatestReport()
	if rep == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no optimization cycle has completed yet")
		return
	}
	writeSuccess(w, http.StatusOK, rep)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.RunCycle(r.Context(), horizon(r, MinRecommendationHorizon))
	if err != nil {
		h.failure(w, r, "run_cycle", err)
		return
	}
	writeSuccess(w, http.StatusOK, rep)
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	// an empty body simulates the stored rules
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	for _, o := range req.Overrides {
		if strings.TrimSpace(o.RuleID) == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "override rule_id is required")
			return
		}
	}
	rep, err := h.svc.Simulate(r.Context(), clampHorizon(req.HorizonDays, MinRecommendationHorizon), req.Overrides)
	if err != nil {
		h.failure(w, r, "simulate", err)
		return
	}
	writeSuccess(w, http.StatusOK, rep)
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.compute(w, r, MinInsightHorizon)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, Insights{
		ReportID:    rep.ID,
		GeneratedAt: rep.GeneratedAt.UTC().Format(time.RFC3339),
		HorizonDays: rep.HorizonDays,
		Forecast:    rep.Forecast,
		Pricing:     rep.Pricing,
		Maintenance: rep.Maintenance,
		Simulations: rep.Simulations,
		Dashboard:   rep.Dashboard,
	})
}

func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.compute(w, r, MinInsightHorizon)
	if !ok {
		return
	}
	entries := rep.Heatmap
	if entries == nil {
		entries = []optimizer.HeatmapEntry{}
	}
	writeSuccess(w, http.StatusOK, entries)
}

func (h *Handler) kpis(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.compute(w, r, MinInsightHorizon); ok {
		writeSuccess(w, http.StatusOK, rep.Balance)
	}
}

func (h *Handler) historyList(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "report archive is disabled")
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.failure(w, r, "history", err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}

func (h *Handler) historyEntry(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "report archive is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	e, ok, err := h.history.Find(r.Context(), id)
	if err != nil {
		h.failure(w, r, "history_entry", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("report %s is not archived", id))
		return
	}
	writeSuccess(w, http.StatusOK, e)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.Rules(r.Context())
	if err != nil {
		h.failure(w, r, "list_rules", err)
		return
	}
	if rules == nil {
		rules = []model.OptimizationRule{}
	}
	writeSuccess(w, http.StatusOK, rules)
}

func (h *Handler) putRule(w http.ResponseWriter, r *http.Request) {
	var rule model.OptimizationRule
	if err := decodeBody(r, &rule); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if rule.ID != "" && rule.ID != id {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("body id %q does not match path id %q", rule.ID, id))
		return
	}
	rule.ID = id
	if rule.Threshold < 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "threshold must not be negative")
		return
	}
	if err := h.rules.UpsertRule(r.Context(), rule); err != nil {
		h.failure(w, r, "upsert_rule", err)
		return
	}
	writeSuccess(w, http.StatusOK, rule)
}

func (h *Handler) listRecommendations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		if err := model.ValidateStatus(status); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	recs, err := h.recs.ListRecommendations(r.Context(), status)
	if err != nil {
		h.failure(w, r, "list_recommendations", err)
		return
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	writeSuccess(w, http.StatusOK, recs)
}

func (h *Handler) review(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.recs.UpdateRecommendationStatus(r.Context(), id, status); err != nil {
			h.failure(w, r, "review_recommendation", err)
			return
		}
		if err := h.reviews.RecordReview(coremetrics.ReviewEvent{
			RecommendationID: id,
			Status:           status,
			Time:             h.now(),
		}); err != nil {
			h.log.Warnf("record review %s: %v", id, err)
		}
		writeSuccess(w, http.StatusOK, map[string]string{"id": id, "status": status})
	}
}
