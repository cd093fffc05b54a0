package logger

import corelogger "github.com/kilianp07/rolloutplan/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component using the output configured
// with Setup. Without Setup the environment is detected via APP_ENV.
func New(component string) Logger {
	return NewZerologLogger(component)
}
