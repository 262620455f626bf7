// Package logger writes structured logs to a file. The terminal belongs to
// the UI, so nothing is ever written to stdout or stderr.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	mu       sync.Mutex
	base     *slog.Logger
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	logPath  string
)

// Init opens path for appending and routes all loggers to it. Calling Init
// again with the logger already open is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f
	logPath = path
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	base.Info("Logger initialized", "path", path)
	return nil
}

// SetDebug enables debug level logging.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Path returns the open log file path, or "" before Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Logger returns the root logger. Before Init it discards everything.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		return slog.New(slog.DiscardHandler)
	}
	return base
}

// ComponentLogger returns a logger with the component attribute attached.
//
//	log := logger.ComponentLogger("client")
//	log.Debug("request", "method", "GET", "path", path)
func ComponentLogger(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}

// WithSession returns a logger scoped to one training session.
func WithSession(sessionID string) *slog.Logger {
	return Logger().With(slog.String("sessionID", sessionID))
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = nil
	logPath = ""
}

// Reset closes the logger and restores the default level. Used by tests.
func Reset() {
	Close()
	levelVar.Set(slog.LevelInfo)
}
