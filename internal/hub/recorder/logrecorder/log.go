// Package logrecorder implements recorder.Recorder by emitting one
// structured log line per operation, grounded on the teacher's use of
// log/slog throughout internal/*.
package logrecorder

import (
	"context"
	"log/slog"

	"github.com/terminalhub/hub/internal/hub/recorder"
)

// Recorder writes each Entry as an slog.Info line at component "recorder".
type Recorder struct {
	logger *slog.Logger
}

// New returns a Recorder using the given logger, or slog.Default if nil.
func New(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger.With("component", "recorder")}
}

func (r *Recorder) Record(_ context.Context, e recorder.Entry) error {
	r.logger.Info("operation",
		"kind", string(e.Kind),
		"submodule", e.SubmoduleName,
		"detail", e.Detail,
	)
	return nil
}
