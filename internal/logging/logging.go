// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides structured, component-scoped logging for printgate.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger wraps slog.Logger with a fixed component name.
type Logger struct {
	component string
	slog      *slog.Logger
}

var (
	mu      sync.RWMutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	root                 = &Logger{slog: slog.New(handler)}
)

// SetOutput redirects the default handler's output. Used by tests and cmd/ entrypoints.
func SetOutput(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	root = &Logger{slog: slog.New(handler)}
}

// WithComponent returns a Logger that tags every record with component=name,
// mirroring the per-subsystem loggers used throughout the daemon.
func WithComponent(name string) *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &Logger{component: name, slog: slog.New(handler).With("component", name)}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// WithError attaches an error to the next log line, matching the fluent style
// used across the daemon (logging.WithComponent("x").WithError(err).Error(...)).
func (l *Logger) WithError(err error) *Logger {
	child := &Logger{component: l.component, slog: l.slog.With("error", err)}
	return child
}

// DebugContext/InfoContext etc. allow callers to thread request-scoped attributes
// (e.g. a decision correlation ID) without a full logger rebuild.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

// Package-level helpers delegate to the default root logger, for call sites
// that don't need a component-scoped logger.
func Debug(msg string, args ...any) { root.Debug(msg, args...) }
func Info(msg string, args ...any)  { root.Info(msg, args...) }
func Warn(msg string, args ...any)  { root.Warn(msg, args...) }
func Error(msg string, args ...any) { root.Error(msg, args...) }
