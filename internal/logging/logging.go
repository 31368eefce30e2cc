package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// ParseLevel accepts the slog level names (debug, info, warn, error) in any
// case and falls back to info on anything it does not recognize.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New builds the process-wide JSON logger writing to stdout.
func New(level string) *slog.Logger {
	return NewAt(os.Stdout, level)
}

// NewAt is New with an explicit sink, for tests that want to read the output.
func NewAt(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h)
}

// IntoContext and FromContext carry a request-scoped logger through the
// service layers. FromContext never returns nil; it degrades to the slog
// default when no logger was attached.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
