package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/rolloutplan/core/metrics"
)

// PromSink records planner events in Prometheus metrics.
type PromSink struct {
	plans    *prometheus.CounterVec
	weeks    prometheus.Histogram
	genTime  prometheus.Histogram
	exports  *prometheus.CounterVec
	sessions prometheus.Gauge
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollout_plans_generated_total",
		Help: "Total number of generated rollout plans",
	}, []string{"source"})
	weeks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollout_plan_weeks",
		Help:    "Number of weeks in generated plans",
		Buckets: prometheus.LinearBuckets(1, 5, 6),
	})
	genTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollout_plan_generation_seconds",
		Help:    "Time spent generating a plan",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollout_exports_total",
		Help: "Total number of plan exports",
	}, []string{"format", "success"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rollout_sessions_active",
		Help: "Number of live planning sessions",
	})

	var err error
	if plans, err = register(reg, plans); err != nil {
		return nil, err
	}
	if weeks, err = register(reg, weeks); err != nil {
		return nil, err
	}
	if genTime, err = register(reg, genTime); err != nil {
		return nil, err
	}
	if exports, err = register(reg, exports); err != nil {
		return nil, err
	}
	if sessions, err = register(reg, sessions); err != nil {
		return nil, err
	}
	return &PromSink{plans: plans, weeks: weeks, genTime: genTime, exports: exports, sessions: sessions}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration counts the plan and observes its size and duration.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	src := ev.Source
	if src == "" {
		src = "unknown"
	}
	s.plans.WithLabelValues(src).Inc()
	s.weeks.Observe(float64(ev.Weeks))
	s.genTime.Observe(ev.Duration.Seconds())
	return nil
}

// RecordExport counts the export by format and outcome.
func (s *PromSink) RecordExport(ev coremetrics.ExportEvent) error {
	s.exports.WithLabelValues(ev.Format, strconv.FormatBool(ev.Err == nil)).Inc()
	return nil
}

// RecordActiveSessions sets the session gauge.
func (s *PromSink) RecordActiveSessions(n int) error {
	s.sessions.Set(float64(n))
	return nil
}
