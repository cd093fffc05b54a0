package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/rolloutplan/api/plan"
	"github.com/kilianp07/rolloutplan/config"
	coremetrics "github.com/kilianp07/rolloutplan/core/metrics"
	coremon "github.com/kilianp07/rolloutplan/core/monitoring"
	"github.com/kilianp07/rolloutplan/core/session"
	"github.com/kilianp07/rolloutplan/infra/logger"
	"github.com/kilianp07/rolloutplan/infra/metrics"
	"github.com/kilianp07/rolloutplan/infra/monitoring"
	"github.com/kilianp07/rolloutplan/internal/eventbus"
)

// Service serves the planner API and observes session events.
type Service struct {
	Store   *session.MemoryStore
	Handler http.Handler

	cfg  *config.Config
	bus  *eventbus.Bus[session.PlanGenerated]
	sink coremetrics.MetricsSink
	mon  coremon.Monitor
	log  logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if cfg.Metrics.PrometheusEnabled {
		s, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = s
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	bus := eventbus.New[session.PlanGenerated]()
	store := session.NewMemoryStore(session.WithBus(bus))
	mux := http.NewServeMux()
	plan.NewHandler(store, cfg.Plan, sink, mon, logger.New("api")).Register(mux)

	return &Service{
		Store:   store,
		Handler: mux,
		cfg:     cfg,
		bus:     bus,
		sink:    sink,
		mon:     mon,
		log:     logg,
	}, nil
}

// Run starts the HTTP servers and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	events := s.bus.Subscribe()
	go s.observe(events)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			defer s.mon.Recover()
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Server.Address, Handler: s.Handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// observe records session plan generations until the bus is closed.
func (s *Service) observe(events <-chan session.PlanGenerated) {
	defer s.mon.Recover()
	for ev := range events {
		s.handle(ev)
	}
}

func (s *Service) handle(ev session.PlanGenerated) {
	gen := coremetrics.GenerationEvent{Source: "session", Branches: ev.Branches, Weeks: ev.Weeks, Duration: ev.Duration}
	if err := s.sink.RecordGeneration(gen); err != nil {
		s.log.Warnf("record generation: %v", err)
	}
	if len(ev.Pruned) > 0 {
		s.log.Warnf("session %s: dropped annotations for weeks %v after regeneration", ev.SessionID, ev.Pruned)
	}
	s.log.Debugw("plan generated", map[string]any{
		"session":  ev.SessionID,
		"branches": ev.Branches,
		"weeks":    ev.Weeks,
	})
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.mon.Flush(2 * time.Second)
	return nil
}
