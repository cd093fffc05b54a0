package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rolloutplan/config"
	coremon "github.com/kilianp07/rolloutplan/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
	m.CaptureException(errors.New("ignored"), nil)
	m.Flush(time.Millisecond)
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "://not-a-dsn"})
	assert.Error(t, err)
}

func TestSentryMonitorCapture(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1", Environment: "test"})
	require.NoError(t, err)
	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("export failed"), map[string]string{"format": "csv"})
	m.Flush(10 * time.Millisecond)
}
