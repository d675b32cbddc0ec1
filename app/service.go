// Package app wires the store, the optimization engine and its outer
// surfaces into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/fleetopt/api/optimization"
	"github.com/kilianp07/fleetopt/config"
	coremetrics "github.com/kilianp07/fleetopt/core/metrics"
	coremon "github.com/kilianp07/fleetopt/core/monitoring"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/core/scheduler"
	"github.com/kilianp07/fleetopt/infra/archive"
	"github.com/kilianp07/fleetopt/infra/logger"
	"github.com/kilianp07/fleetopt/infra/metrics"
	"github.com/kilianp07/fleetopt/infra/monitoring"
	"github.com/kilianp07/fleetopt/infra/mqtt"
	"github.com/kilianp07/fleetopt/infra/sqlite"
	"github.com/kilianp07/fleetopt/internal/eventbus"
)

// Service owns every long-lived component of the optimizer.
type Service struct {
	Store        *sqlite.Store
	Engine       *optimizer.Engine
	Orchestrator *scheduler.Orchestrator
	Sink         coremetrics.MetricsSink

	cfg       *config.Config
	bus       *eventbus.TypedBus[coremetrics.CycleEvent]
	archive   *archive.Archive
	publisher *mqtt.Publisher
	log       logger.Logger

	wg sync.WaitGroup
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	st, err := sqlite.Open(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	svc := &Service{Store: st, cfg: cfg, log: logg}

	engine, err := optimizer.NewEngine(st, st, logger.New("optimizer"))
	if err != nil {
		svc.closeQuietly()
		return nil, fmt.Errorf("engine: %w", err)
	}
	svc.Engine = engine

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		svc.closeQuietly()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.Sink = sink
	svc.bus = eventbus.NewTypedWithBuffer[coremetrics.CycleEvent](cfg.Metrics.EventBuffer)

	var notifiers []scheduler.Notifier
	if cfg.Archive.Enabled {
		a, err := archive.New(cfg.Archive.Path, cfg.Archive.MaxSizeMB, cfg.Archive.MaxBackups, cfg.Archive.MaxAgeDays, cfg.Archive.Compress)
		if err != nil {
			svc.closeQuietly()
			return nil, fmt.Errorf("report archive: %w", err)
		}
		svc.archive = a
		notifiers = append(notifiers, a)
	}
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			svc.closeQuietly()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = p
		notifiers = append(notifiers, p)
	}

	orch, err := scheduler.New(engine, st, logger.New("scheduler"),
		scheduler.WithEvents(svc.bus),
		scheduler.WithNotifiers(notifiers...),
		scheduler.WithCompletionCallback(func(c *optimizer.Computation) {
			logg.Debugf("report %s computed over %d routes and %d rules", c.Report.ID, len(c.Routes), len(c.Rules))
		}),
	)
	if err != nil {
		svc.closeQuietly()
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	svc.Orchestrator = orch
	return svc, nil
}

// Handler returns the HTTP API bound to the service.
func (s *Service) Handler() http.Handler {
	opts := []optimization.Option{
		optimization.WithToken(s.cfg.API.Token),
		optimization.WithLogger(logger.New("api")),
	}
	if rec, ok := s.Sink.(coremetrics.ReviewRecorder); ok {
		opts = append(opts, optimization.WithReviewRecorder(rec))
	}
	if s.archive != nil {
		opts = append(opts, optimization.WithHistory(s.archive))
	}
	h := optimization.NewHandler(s.Orchestrator, s.Store, s.Store, opts...)
	return optimization.NewRouter(h)
}

// Run starts the scheduler, the metrics collector and the HTTP servers, and
// blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	collectorDone := metrics.StartEventCollector(ctx, s.bus, s.Sink)

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		s.goServe("prom server", func() error { return metrics.StartPromServer(ctx, addr) })
	}
	if s.cfg.API.Enabled {
		handler := s.Handler()
		addr := s.cfg.API.Addr
		s.goServe("api server", func() error { return serveHTTP(ctx, addr, handler) })
		s.log.Infof("optimization API listening on %s", addr)
	}
	if s.cfg.Optimizer.Enabled {
		s.Orchestrator.Start(ctx, s.cfg.Optimizer.Interval(), s.cfg.Optimizer.HorizonDays)
	}

	<-ctx.Done()
	s.Orchestrator.Stop()
	s.wg.Wait()
	<-collectorDone
	return nil
}

func (s *Service) goServe(name string, serve func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer coremon.Recover()
		if err := serve(); err != nil {
			s.log.Errorf("%s: %v", name, err)
			coremon.CaptureException(err, map[string]string{"module": "app", "server": name})
		}
	}()
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.Orchestrator != nil {
		s.Orchestrator.Stop()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	var errs []error
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if s.archive != nil {
		errs = append(errs, s.archive.Close())
	}
	if c, ok := s.Sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func (s *Service) closeQuietly() {
	if err := s.Close(); err != nil {
		s.log.Warnf("close after init failure: %v", err)
	}
}
