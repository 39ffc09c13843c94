package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// New returns a logger for the given environment. Unknown environments
// get the prod setup.
func New(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal, "":
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

// WithLevel is New with an explicit minimum level for the JSON handlers.
// The pretty handler is always debug.
func WithLevel(env, level string) *slog.Logger {
	if env == envLocal || env == "" || level == "" {
		return New(env)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return New(env)
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// NewCLI is the logger for interactive commands: it writes to stderr so
// command output on stdout stays machine-readable, and honours level even
// for the pretty handler.
func NewCLI(env, level string) *slog.Logger {
	return newCLI(env, level, os.Stderr)
}

func newCLI(env, level string, out io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	if level != "" {
		_ = lvl.UnmarshalText([]byte(level))
	}

	if env == envLocal || env == "" {
		opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: lvl}}
		return slog.New(opts.NewPrettyHandler(out))
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

func setupPrettySlog() *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
