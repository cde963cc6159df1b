// Package manager implements the four manager loops (spec §4.6,
// component C6): submodule, instruct, manipulate, heartbeat. Each loop
// is grounded on the teacher's internal/daemon/convergence.Supervisor.Run
// / internal/supervisor.Supervisor.Run shape: an injected-dependency
// struct, a logger plus a best-effort recorder for observability, and a
// select loop over ctx.Done, a work channel, and (for heartbeat) a ticker.
package manager

import (
	"context"
	"log/slog"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Deps are the shared components every manager loop reads from or
// writes to (spec §4.7: owned by the supervisor, injected here).
type Deps struct {
	Store    Store
	Matcher  Matcher
	Encoder  Encoder
	Recorder Recorder
	// ClientFactories resolves the outbound transport.ClientFactory for
	// a given domain.ConnectionKind at Register time.
	ClientFactories map[domain.ConnectionKind]ClientFactory

	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Store is the subset of store.Store every manager loop needs. Defined
// here (rather than importing store directly into call sites) so tests
// can substitute a fake without pulling in the real registry.
type Store interface {
	Insert(sub *domain.Submodule) error
	Get(name string) *domain.Submodule
	WithMut(name string, fn func(*domain.Submodule)) error
	Remove(name string) *domain.Submodule
	TouchHeartbeat(name string) error
	Expired(thresholdSeconds int64) []string
}

// Matcher is the subset of matcher.Matcher every manager loop needs.
type Matcher interface {
	Append(ctx context.Context, point domain.PointPayload) error
	Remove(ctx context.Context, uuids []string) error
	Mutate(ctx context.Context, add []domain.PointPayload, removeUUIDs []string, commit func() error) error
	Search(ctx context.Context, query []float32) (domain.PointPayload, error)
}

// Encoder is the subset of encoder.Encoder every manager loop needs.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Recorder is the subset of recorder.Recorder every manager loop needs.
type Recorder interface {
	Record(ctx context.Context, e RecordEntry) error
}

// RecordEntry mirrors recorder.Entry so this package does not need to
// import the recorder package just for its value type.
type RecordEntry struct {
	Kind          string
	SubmoduleName string
	Detail        string
}

// ClientFactory is the subset of transport.ClientFactory every manager
// loop needs.
type ClientFactory interface {
	Dial(ctx context.Context, connConfig map[string]string) (domain.Client, error)
}

// recordBestEffort calls Recorder.Record and logs a failure instead of
// propagating it (spec §4.5: "the recorder is best-effort").
func recordBestEffort(ctx context.Context, r Recorder, logger *slog.Logger, e RecordEntry) {
	if r == nil {
		return
	}
	if err := r.Record(ctx, e); err != nil {
		logger.Warn("record operation failed", "kind", e.Kind, "submodule", e.SubmoduleName, "err", err)
	}
}
