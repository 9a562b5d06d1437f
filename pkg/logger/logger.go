package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Service   string
	Env       string
	Level     string
	Format    string // "json" (default) or "text"
	AddSource bool

	// Output defaults to stdout.
	Output io.Writer
}

func New(opts Options) *slog.Logger {
	base := slog.New(newHandler(opts)).With(
		"service", opts.Service,
		"env", opts.Env,
	)

	slog.SetDefault(base)
	return base
}

func newHandler(opts Options) slog.Handler {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level),
		AddSource: opts.AddSource,
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		return slog.NewTextHandler(out, hopts)
	}
	return slog.NewJSONHandler(out, hopts)
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
