// Package logging builds the structured logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a configured application logger.
// It writes to Stderr so that solver/validator logs and status lines own Stdout.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config level name to a slog level. "off" and "" mean no logging,
// reported as ok=false.
func ParseLevel(name string) (level slog.Level, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "off", "none":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	}
	return 0, false, fmt.Errorf("unknown log level %q", name)
}

// FromLevelName returns New(level) for a valid name and NewNop() for "off".
func FromLevelName(name string) (*slog.Logger, error) {
	level, ok, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewNop(), nil
	}
	return New(level), nil
}
