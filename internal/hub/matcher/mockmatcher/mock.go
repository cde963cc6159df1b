// Package mockmatcher implements matcher.Matcher's required mock
// variant (spec §4.2): Append and Remove always succeed, Search always
// reports domain.ErrNotFound.
package mockmatcher

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Matcher discards every point and never finds a match.
type Matcher struct {
	dim uint64
}

// New returns a mock matcher reporting dim as its dimension.
func New(dim uint64) *Matcher {
	return &Matcher{dim: dim}
}

func (m *Matcher) Append(context.Context, domain.PointPayload) error { return nil }

func (m *Matcher) Remove(context.Context, []string) error { return nil }

// Mutate discards add/removeUUIDs (this matcher never actually indexes
// anything) and runs commit directly, since there is no lock whose
// release ordering a mock needs to honor.
func (m *Matcher) Mutate(_ context.Context, _ []domain.PointPayload, _ []string, commit func() error) error {
	return commit()
}

func (m *Matcher) Search(context.Context, []float32) (domain.PointPayload, error) {
	return domain.PointPayload{}, domain.ErrNotFound
}

func (m *Matcher) Dimension() uint64 { return m.dim }
