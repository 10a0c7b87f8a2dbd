package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ctxKey is a distinct type so context keys cannot collide across packages
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a context carrying the given logger
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the command logger, falling back to the
// package default so callers always get a usable logger
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// fileLogger returns a logger writing to <config-dir>/jsongraph.log.
// The TUI owns the terminal, so stderr logging would corrupt the display.
func fileLogger(level log.Level) (*log.Logger, func(), error) {
	path := filepath.Join(GetConfigDir(), "jsongraph.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return logger, func() { _ = f.Close() }, nil
}
