package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	base *slog.Logger
}

func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout, "info")
}

func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{base: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.base.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.base.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.base.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Fatalf logs and exits the process.
func (l *Logger) Fatalf(format string, args ...any) {
	if l != nil {
		l.base.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
	}
	os.Exit(1)
}

// With returns a logger carrying the given key/value attributes.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With(args...)}
}
