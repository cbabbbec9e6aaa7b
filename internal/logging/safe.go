package logging

import (
	"context"
	"io"
	"strings"
)

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }

// safeLogger shields callers from sinks that panic.
type safeLogger struct {
	next Logger
}

// Safe wraps l so a panicking sink never propagates to the caller. A nil l
// yields Nop.
func Safe(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	if s, ok := l.(safeLogger); ok {
		return s
	}
	return safeLogger{next: l}
}

func (s safeLogger) Debug(ctx context.Context, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.next.Debug(ctx, msg, args...)
}

func (s safeLogger) Info(ctx context.Context, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.next.Info(ctx, msg, args...)
}

func (s safeLogger) Warn(ctx context.Context, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.next.Warn(ctx, msg, args...)
}

func (s safeLogger) Error(ctx context.Context, msg string, args ...any) {
	defer func() { _ = recover() }()
	s.next.Error(ctx, msg, args...)
}

func (s safeLogger) With(args ...any) (l Logger) {
	defer func() {
		if recover() != nil {
			l = s
		}
	}()
	return safeLogger{next: s.next.With(args...)}
}

// New picks an adapter by format: "json" (slog JSON), "zap" (zap JSON) or
// anything else for slog text.
func New(w io.Writer, format, level string) Logger {
	switch strings.ToLower(format) {
	case "json":
		return Safe(NewJSONLogger(w, level))
	case "zap":
		return Safe(NewZapJSONLogger(w, level))
	default:
		return Safe(NewTextLogger(w, level))
	}
}
