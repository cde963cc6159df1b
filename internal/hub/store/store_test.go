package store_test

import (
	"errors"
	"testing"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/store"
)

func newSubmodule(name string) *domain.Submodule {
	return &domain.Submodule{
		Name:               name,
		Capability:         domain.CapabilityBoth,
		DefaultInstructMap: map[string]domain.PointPayload{},
	}
}

func TestInsertRejectsDuplicateName(t *testing.T) {
	s := store.New()
	if err := s.Insert(newSubmodule("lamp")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := s.Insert(newSubmodule("lamp"))
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestGetReturnsNilForAbsentName(t *testing.T) {
	s := store.New()
	if got := s.Get("missing"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestTouchHeartbeatFailsOnAbsentName(t *testing.T) {
	s := store.New()
	err := s.TouchHeartbeat("missing")
	if !errors.Is(err, domain.ErrUnknownSubmodule) {
		t.Fatalf("expected ErrUnknownSubmodule, got %v", err)
	}
}

func TestTouchHeartbeatMonotonic(t *testing.T) {
	s := store.New()
	sub := newSubmodule("lamp")
	sub.HeartbeatTime = 1 << 40 // far future, simulates a clock step back
	if err := s.Insert(sub); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.TouchHeartbeat("lamp"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got := s.Get("lamp")
	if got.HeartbeatTime != sub.HeartbeatTime {
		t.Fatalf("heartbeat regressed: want %d, got %d", sub.HeartbeatTime, got.HeartbeatTime)
	}
}

func TestRemoveIsIdempotentOnAbsentName(t *testing.T) {
	s := store.New()
	if got := s.Remove("missing"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestExpiredReturnsOnlyStaleNames(t *testing.T) {
	s := store.New()
	fresh := newSubmodule("fresh")
	stale := newSubmodule("stale")
	stale.HeartbeatTime = 1 // effectively year 1970, always stale
	if err := s.Insert(fresh); err != nil {
		t.Fatalf("insert fresh: %v", err)
	}
	if err := s.TouchHeartbeat("fresh"); err != nil {
		t.Fatalf("touch fresh: %v", err)
	}
	if err := s.Insert(stale); err != nil {
		t.Fatalf("insert stale: %v", err)
	}

	expired := s.Expired(60)
	if len(expired) != 1 || expired[0] != "stale" {
		t.Fatalf("expected only [stale], got %v", expired)
	}
}

func TestWithMutFailsOnAbsentName(t *testing.T) {
	s := store.New()
	err := s.WithMut("missing", func(*domain.Submodule) {})
	if !errors.Is(err, domain.ErrUnknownSubmodule) {
		t.Fatalf("expected ErrUnknownSubmodule, got %v", err)
	}
}

func TestWithMutMutatesLiveValue(t *testing.T) {
	s := store.New()
	if err := s.Insert(newSubmodule("lamp")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.WithMut("lamp", func(sub *domain.Submodule) {
		sub.DefaultInstructMap["turn on"] = domain.PointPayload{UUID: "p1", Instruct: "turn on"}
	})
	if err != nil {
		t.Fatalf("with mut: %v", err)
	}
	got := s.Get("lamp")
	if _, ok := got.DefaultInstructMap["turn on"]; !ok {
		t.Fatalf("mutation did not persist: %+v", got.DefaultInstructMap)
	}
}
