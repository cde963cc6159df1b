// Package inprocess implements matcher.Matcher as a brute-force
// cosine-similarity scan held entirely in memory, guarded by a
// sync.RWMutex the way store.Store guards the submodule registry.
// Spec §9 allows a single build to pick one matcher backend; this one
// trades O(n) search for zero external dependencies and is the default.
package inprocess

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/matcher"
)

type entry struct {
	point  domain.PointPayload
	vector []float32
}

// Matcher is an in-memory brute-force nearest-neighbor index.
type Matcher struct {
	mu  sync.RWMutex
	dim uint64
	// points is indexed by UUID so re-appending a UUID replaces in place.
	points map[string]entry
}

// New returns an empty Matcher built for vectors of length dim.
func New(dim uint64) *Matcher {
	return &Matcher{dim: dim, points: make(map[string]entry)}
}

func (m *Matcher) Append(_ context.Context, point domain.PointPayload) error {
	if uint64(len(point.Encode)) != m.dim {
		return domain.NewMatcherError(dimensionMismatch(m.dim, len(point.Encode)))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[point.UUID] = entry{point: point, vector: point.Encode}
	return nil
}

func (m *Matcher) Remove(_ context.Context, uuids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range uuids {
		delete(m.points, id)
	}
	return nil
}

// Mutate holds mu for the add, the remove, and commit, so a concurrent
// Search's RLock can only acquire before every one of these mutations
// lands or after all of them (plus the caller's own commit) have
// landed — never in between (spec.md:130).
func (m *Matcher) Mutate(_ context.Context, add []domain.PointPayload, removeUUIDs []string, commit func() error) error {
	for _, p := range add {
		if uint64(len(p.Encode)) != m.dim {
			return domain.NewMatcherError(dimensionMismatch(m.dim, len(p.Encode)))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	addedIDs := make([]string, 0, len(add))
	for _, p := range add {
		addedIDs = append(addedIDs, p.UUID)
		m.points[p.UUID] = entry{point: p, vector: p.Encode}
	}

	type prior struct {
		id  string
		e   entry
		had bool
	}
	removedPrior := make([]prior, 0, len(removeUUIDs))
	for _, id := range removeUUIDs {
		e, had := m.points[id]
		removedPrior = append(removedPrior, prior{id: id, e: e, had: had})
		delete(m.points, id)
	}

	if err := commit(); err != nil {
		for _, id := range addedIDs {
			delete(m.points, id)
		}
		for _, r := range removedPrior {
			if r.had {
				m.points[r.id] = r.e
			}
		}
		return err
	}
	return nil
}

func (m *Matcher) Search(_ context.Context, query []float32) (domain.PointPayload, error) {
	if uint64(len(query)) != m.dim {
		return domain.PointPayload{}, domain.NewMatcherError(dimensionMismatch(m.dim, len(query)))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var best entry
	bestScore := -1.0
	for _, e := range m.points {
		score := cosine(query, e.vector)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	if bestScore < matcher.ConfidenceThreshold {
		return domain.PointPayload{}, domain.ErrNotFound
	}
	return best.point, nil
}

func (m *Matcher) Dimension() uint64 { return m.dim }

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func dimensionMismatch(want uint64, got int) error {
	return fmt.Errorf("vector dimension mismatch: want %d, got %d", want, got)
}
