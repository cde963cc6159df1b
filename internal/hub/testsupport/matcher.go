package testsupport

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Matcher is a fake matcher.Matcher that returns a configured search
// result and records Append/Remove calls.
type Matcher struct {
	CallRecorder

	SearchResult domain.PointPayload
	SearchErr    error
	AppendErr    error
	RemoveErr    error
	MutateErr    error
}

func (m *Matcher) Append(_ context.Context, point domain.PointPayload) error {
	m.Record("Append", point)
	return m.AppendErr
}

func (m *Matcher) Remove(_ context.Context, uuids []string) error {
	m.Record("Remove", uuids)
	return m.RemoveErr
}

// Mutate records the call and, unless MutateErr is set, runs commit
// and returns its error — good enough to exercise callers without
// reproducing inprocess.Matcher's lock/rollback bookkeeping.
func (m *Matcher) Mutate(_ context.Context, add []domain.PointPayload, removeUUIDs []string, commit func() error) error {
	m.Record("Mutate", add, removeUUIDs)
	if m.MutateErr != nil {
		return m.MutateErr
	}
	return commit()
}

func (m *Matcher) Search(_ context.Context, query []float32) (domain.PointPayload, error) {
	m.Record("Search", query)
	if m.SearchErr != nil {
		return domain.PointPayload{}, m.SearchErr
	}
	return m.SearchResult, nil
}
