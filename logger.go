package facetgo

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with facetgo-specific context. It provides
// structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCatalog adds a catalog field to the logger.
func (l *Logger) WithCatalog(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("catalog", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(pos uint32, err error) {
	if err != nil {
		l.Error("add failed",
			"position", pos,
			"error", err,
		)
	} else {
		l.Debug("add completed",
			"position", pos,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(pos uint32, err error) {
	if err != nil {
		l.Error("remove failed",
			"position", pos,
			"error", err,
		)
	} else {
		l.Debug("remove completed",
			"position", pos,
		)
	}
}

// LogQuery logs a query execution.
func (l *Logger) LogQuery(total uint32, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("query failed",
			"error", err,
		)
	} else {
		l.Debug("query completed",
			"total", total,
			"elapsed", elapsed,
		)
	}
}

// LogCompaction logs a compaction run.
func (l *Logger) LogCompaction(removed int, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("compaction failed",
			"error", err,
		)
	} else {
		l.Info("compaction completed",
			"removed", removed,
			"elapsed", elapsed,
		)
	}
}
