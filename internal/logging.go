package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type LogOptions struct {
	// Verbosity is -1 for quiet, 0 for normal and 1 or more for debug.
	Verbosity int
	// Format is "text" or "json".
	Format string
	// File, when set, receives the log through a rotating writer instead of
	// stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger builds the run logger. The returned closer flushes and closes the
// log file, if any.
func NewLogger(opts LogOptions) (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(opts.File) != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		w = lj
		closer = lj
	}
	return NewLoggerTo(w, opts), closer
}

// NewLoggerTo builds a logger writing to w.
func NewLoggerTo(w io.Writer, opts LogOptions) *slog.Logger {
	lvl := slog.LevelInfo
	switch {
	case opts.Verbosity < 0:
		lvl = slog.LevelWarn
	case opts.Verbosity > 0:
		lvl = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h)
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
