package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SinkConfig describes one destination for log records (spec §6's
// `log` block: a list of sinks, each with its own level and display
// flags).
type SinkConfig struct {
	Kind      string // console | file
	Path      string // required when Kind == "file"
	Level     string
	AddSource bool
	JSON      bool
}

// Configure installs a process-wide slog default logger built from
// sinks. An empty sinks list falls back to a single console sink at
// level.
func Configure(level string, sinks []SinkConfig) error {
	if len(sinks) == 0 {
		sinks = []SinkConfig{{Kind: "console", Level: level}}
	}

	handlers := make([]slog.Handler, 0, len(sinks))
	for _, s := range sinks {
		h, err := buildHandler(s)
		if err != nil {
			return err
		}
		handlers = append(handlers, h)
	}

	slog.SetDefault(slog.New(fanoutHandler{handlers: handlers}))
	return nil
}

func buildHandler(s SinkConfig) (slog.Handler, error) {
	parsed, err := parseLevel(s.Level)
	if err != nil {
		return nil, err
	}

	w, err := sinkWriter(s)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: parsed, AddSource: s.AddSource}
	if s.JSON {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

func sinkWriter(s SinkConfig) (*os.File, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", "console":
		return os.Stderr, nil
	case "file":
		if s.Path == "" {
			return nil, fmt.Errorf("log sink %q: missing path", s.Kind)
		}
		return os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	default:
		return nil, fmt.Errorf("unknown log sink kind %q", s.Kind)
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelInfo:
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

// fanoutHandler multiplexes one slog.Record to every sink handler,
// each with its own level and format, so the console and file sinks
// named in spec §6 can disagree on verbosity independently.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}
