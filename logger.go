package lmdiskann

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-specific structured fields, in the
// style of this codebase's other operation loggers: one LogX method per
// mutating or querying operation, logging at Debug on success and Error
// on failure so normal operation stays quiet at Info level and above.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps an existing slog.Handler. A nil handler falls back to a
// text handler writing to stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger returns a Logger emitting JSON to stderr at the given level.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards all output; the zero-cost default for Options.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// LogInsert logs the result of an Insert call.
func (l *Logger) LogInsert(ctx context.Context, id uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed", "id", id, "error", err)
		return
	}
	l.DebugContext(ctx, "insert completed", "id", id)
}

// LogDelete logs the result of a Delete call.
func (l *Logger) LogDelete(ctx context.Context, id uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed", "id", id, "error", err)
		return
	}
	l.DebugContext(ctx, "delete completed", "id", id)
}

// LogSearch logs the result of a Search call.
func (l *Logger) LogSearch(ctx context.Context, topk, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed", "topk", topk, "error", err)
		return
	}
	l.DebugContext(ctx, "search completed", "topk", topk, "found", found)
}

// LogGrow logs a storage growth event.
func (l *Logger) LogGrow(ctx context.Context, oldCapacity, newCapacity int) {
	l.InfoContext(ctx, "storage grown", "old_capacity", oldCapacity, "new_capacity", newCapacity)
}

// LogBackpatch logs a best-effort back-patch failure during insert; these
// do not abort the insert (see the back-patch transactionality decision).
func (l *Logger) LogBackpatch(ctx context.Context, owner, candidate uint32, err error) {
	l.DebugContext(ctx, "back-patch failed", "owner", owner, "candidate", candidate, "error", err)
}
