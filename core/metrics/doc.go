// Package metrics defines the observability contract of the rollout planner.
// Sinks record plan generations, exports and the number of live editing
// sessions. The Prometheus implementation lives in infra/metrics.
package metrics
