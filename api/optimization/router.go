// Package optimization exposes the optimization engine over HTTP under
// /api/optimization.
package optimization

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/core/store"
	"github.com/kilianp07/fleetopt/infra/archive"
	"github.com/kilianp07/fleetopt/infra/logger"
)

// Horizon bounds of the HTTP surface. Raw insights need a longer window
// than recommendations.
const (
	MinRecommendationHorizon = 3
	MinInsightHorizon        = 5
	MaxHorizon               = 14
)

// Service is the orchestration surface used by the handlers.
type Service interface {
	ComputeReport(ctx context.Context, horizonDays int) (*optimizer.Report, error)
	RunCycle(ctx context.Context, horizonDays int) (*optimizer.Report, error)
	Simulate(ctx context.Context, horizonDays int, overrides []model.RuleOverride) (*optimizer.Report, error)
	LatestReport() *optimizer.Report
}

// History reads archived reports.
type History interface {
	Recent(ctx context.Context, n int) ([]archive.Entry, error)
	Find(ctx context.Context, reportID string) (archive.Entry, bool, error)
}

// Handler serves the optimization API.
type Handler struct {
	svc     Service
	rules   store.RuleStore
	recs    store.RecommendationStore
	history History
	reviews coremetrics.ReviewRecorder
	token   string
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithToken requires "Authorization: Bearer <token>" on every API route.
func WithToken(token string) Option { return func(h *Handler) { h.token = token } }

// WithHistory enables GET /history and GET /history/{id}.
func WithHistory(hist History) Option { return func(h *Handler) { h.history = hist } }

// WithReviewRecorder records approve and reject decisions.
func WithReviewRecorder(r coremetrics.ReviewRecorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.reviews = r
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler constructs a Handler.
func NewHandler(svc Service, rules store.RuleStore, recs store.RecommendationStore, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		rules:   rules,
		recs:    recs,
		reviews: coremetrics.NopSink{},
		log:     logger.NopLogger{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// NewRouter registers the routes and middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get("/healthz", h.healthz)

	r.Route("/api/optimization", func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Get("/report", h.report)
		r.Get("/latest", h.latest)
		r.Post("/run", h.run)
		r.Post("/simulate", h.simulate)
		r.Get("/insights", h.insights)
		r.Get("/heatmap", h.heatmap)
		r.Get("/kpis", h.kpis)
		r.Get("/history", h.historyList)
		r.Get("/history/{id}", h.historyEntry)

		r.Get("/rules", h.listRules)
		r.Put("/rules/{id}", h.putRule)

		r.Get("/recommendations", h.listRecommendations)
		r.Post("/recommendations/{id}/approve", h.review(model.StatusApproved))
		r.Post("/recommendations/{id}/reject", h.review(model.StatusRejected))
	})
	return r
}
