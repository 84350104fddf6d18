package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Options struct {
	Level     string
	JSON      bool
	ErrorFile string    // error-level records are appended here; "" disables
	Console   io.Writer // defaults to os.Stderr
}

// New builds the process logger: console output at the configured level plus
// an error-level copy in ErrorFile. The returned closer releases the file.
// A log file that cannot be opened is reported on the console and skipped.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{newHandler(console, parseLevel(opts.Level), opts.JSON)}

	var closer io.Closer = nopCloser{}
	var openErr error
	if opts.ErrorFile != "" {
		f, err := os.OpenFile(opts.ErrorFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			openErr = fmt.Errorf("open error log %s: %w", opts.ErrorFile, err)
		} else {
			handlers = append(handlers, newHandler(f, slog.LevelError, opts.JSON))
			closer = f
		}
	}
	l := slog.New(fanout(handlers))
	if openErr != nil {
		l.Warn("error log disabled", "err", openErr)
	}
	return l, closer, nil
}

func newHandler(w io.Writer, lvl slog.Level, json bool) slog.Handler {
	cfg := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.NewJSONHandler(w, cfg)
	}
	return slog.NewTextHandler(w, cfg)
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OptionsFromEnv overlays CHURNPREP_LOG_LEVEL and CHURNPREP_LOG_JSON on base.
func OptionsFromEnv(base Options) Options {
	if lvl := strings.TrimSpace(os.Getenv("CHURNPREP_LOG_LEVEL")); lvl != "" {
		base.Level = lvl
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("CHURNPREP_LOG_JSON"))); err == nil {
		base.JSON = b
	}
	return base
}

// Discard is a logger for tests and library callers that do not log.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

/* ────────── fan-out handler ────────── */

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

// Handle writes to every sink that accepts the level. Sink write failures
// are collected but never stop the other sinks.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
