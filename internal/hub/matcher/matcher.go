// Package matcher defines the semantic-routing index contract (spec
// §4.2, component C3). Concrete backends live in the inprocess and
// mockmatcher subpackages.
package matcher

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// ConfidenceThreshold is the cosine-similarity cutoff below which Search
// must report domain.ErrNotFound rather than the nearest neighbor
// (spec §4.2, τ = 0.7).
const ConfidenceThreshold = 0.7

// Matcher indexes PointPayload vectors and answers nearest-neighbor
// queries against them. All methods are safe for concurrent use.
// Every point's vector must share Dimension (invariant I3); a mismatched
// vector is a domain.MatcherError, not a panic.
type Matcher interface {
	// Append adds point to the index. Re-appending an existing UUID
	// replaces its vector and payload.
	Append(ctx context.Context, point domain.PointPayload) error

	// Remove deletes the points named by uuids from the index (spec
	// §4.6.1: offline calls matcher.remove on every point owned by the
	// departing submodule; update calls it on just the dropped phrases).
	// Absent UUIDs are a no-op, not an error — offline is idempotent.
	Remove(ctx context.Context, uuids []string) error

	// Mutate applies add and removeUUIDs to the index and, without
	// releasing the index's write lock, invokes commit. If commit
	// returns an error, the add/remove are rolled back before the lock
	// is released and that error is returned. This is how a caller
	// pairs a matcher mutation with an external mutation (typically a
	// submodule-store insert/update/remove) so the two appear atomic to
	// a concurrent Search — the matcher lock is acquired first and
	// released last (spec.md:130).
	Mutate(ctx context.Context, add []domain.PointPayload, removeUUIDs []string, commit func() error) error

	// Search returns the PointPayload whose vector is nearest to query
	// by cosine similarity, provided that similarity is at least
	// ConfidenceThreshold. Returns domain.ErrNotFound if the index is
	// empty or no candidate clears the threshold.
	Search(ctx context.Context, query []float32) (domain.PointPayload, error)

	// Dimension returns the vector length this index was built for.
	Dimension() uint64
}
