// Package logging wraps log/slog with component tagging used across every
// service goroutine, the discovery browser, and the façade.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level is re-exported so callers don't need to import log/slog directly.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	defaultLogger *Logger
	once          sync.Once
)

// Logger wraps slog with a dynamically adjustable level.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// Config controls how a Logger is constructed.
type Config struct {
	Level     Level
	Output    io.Writer
	JSON      bool
	AddSource bool
}

// DefaultConfig returns sensible defaults: info level, text console output.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = NewConsoleHandler(cfg.Output, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  levelVar,
	}
}

// Default returns the process-wide default logger, creating it on first use.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(DefaultConfig())
	})
	return defaultLogger
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// SetLevel adjusts the logger's level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level)
}

// WithComponent returns a logger tagged with a "component" field, the
// convention every service/discovery package uses to identify its source
// in a shared log stream (e.g. "arc", "cmc", "discovery").
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
		level:  l.level,
	}
}

// WithComponent tags the process-wide default logger with a component name.
func WithComponent(name string) *Logger {
	return Default().WithComponent(name)
}

// Elapsed is a convenience slog.Attr-producing helper for logging the time
// since a start point consistently as a duration under the "elapsed" key.
func Elapsed(since time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(since))
}
