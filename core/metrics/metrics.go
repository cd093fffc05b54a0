package metrics

import "time"

// GenerationEvent describes one call to the schedule generator.
type GenerationEvent struct {
	Source   string
	Branches int
	Weeks    int
	Duration time.Duration
}

// ExportEvent describes one export attempt.
type ExportEvent struct {
	Format string
	Bytes  int
	Err    error
}

// MetricsSink records planner events for observability purposes.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
	RecordExport(ev ExportEvent) error
}

// SessionRecorder records the number of live sessions.
type SessionRecorder interface {
	RecordActiveSessions(n int) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
func (NopSink) RecordExport(ExportEvent) error         { return nil }
func (NopSink) RecordActiveSessions(int) error         { return nil }
