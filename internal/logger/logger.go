package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// Options controls logger construction.
type Options struct {
	Level  string // zerolog level name; empty means info
	Format string // "json" or "console"
}

// New creates a logger writing to stderr.
func New(opts Options) zerolog.Logger {
	return NewWithWriter(os.Stderr, opts)
}

// NewWithWriter creates a logger writing to w. Console format is
// human-readable; json emits one object per line.
func NewWithWriter(w io.Writer, opts Options) zerolog.Logger {
	out := w
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(contextKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}
