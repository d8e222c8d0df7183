package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger and installs it as the slog default.
// It is created once at startup and handed to every component.
func New(debug bool) *slog.Logger {
	return NewWithWriter(os.Stdout, debug)
}

func NewWithWriter(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	l := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(l)
	return l
}

// Component tags l with the component name, or returns a discarding
// logger when l is nil.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l.With("component", name)
}

func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
