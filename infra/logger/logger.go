package logger

import (
	"io"
	"os"
	"sync"

	corelogger "github.com/kilianp07/fleetopt/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

var (
	outMu  sync.RWMutex
	output io.Writer = os.Stdout
)

// SetOutput changes the destination of loggers created afterwards. Commands
// printing results on stdout send their logs to stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outMu.Lock()
	output = w
	outMu.Unlock()
}

func currentOutput() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return output
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable and the level via LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
