package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/manager"
	"github.com/terminalhub/hub/internal/hub/testsupport"
)

func newSubmoduleManager(t *testing.T) (*manager.SubmoduleManager, *testsupport.Store, *testsupport.Matcher, *testsupport.ClientFactory) {
	t.Helper()
	store := testsupport.NewStore()
	m := &testsupport.Matcher{}
	client := &testsupport.Client{InstructCode: domain.ResponseSuccess, ManipulateCode: domain.ResponseSuccess}
	factory := &testsupport.ClientFactory{Client: client}

	sm := &manager.SubmoduleManager{Deps: manager.Deps{
		Store:   store,
		Matcher: m,
		Encoder: &testsupport.Encoder{Vector: []float32{1, 0}},
		ClientFactories: map[domain.ConnectionKind]manager.ClientFactory{
			domain.ConnectionRPC: factory,
		},
	}}
	return sm, store, m, factory
}

func runSubmodule(t *testing.T, sm *manager.SubmoduleManager, ops ...domain.ModuleOperate) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan domain.ModuleOperate)
	shutdown := make(chan string, 1)
	go sm.Run(ctx, in, shutdown)

	for _, op := range ops {
		in <- op
	}
	// let the goroutine drain the channel before we cancel.
	time.Sleep(20 * time.Millisecond)
}

func TestSubmoduleManagerRegisterInsertsIntoStoreAndMatcher(t *testing.T) {
	sm, store, m, _ := newSubmoduleManager(t)

	runSubmodule(t, sm, domain.ModuleOperate{
		OperateType: domain.OperateRegister,
		Name:        "lamp",
		Info: &domain.ModuleInfo{
			DefaultInstruct: []string{"turn on the lamp"},
			ConnectionKind:  domain.ConnectionRPC,
			Capability:      domain.CapabilityBoth,
		},
	})

	if store.Get("lamp") == nil {
		t.Fatalf("expected lamp registered in store")
	}
	if len(m.Calls("Mutate")) != 1 {
		t.Fatalf("expected 1 matcher mutate, got %d", len(m.Calls("Mutate")))
	}
}

func TestSubmoduleManagerOfflineRemovesFromStoreAndMatcher(t *testing.T) {
	sm, store, m, factory := newSubmoduleManager(t)

	runSubmodule(t, sm, domain.ModuleOperate{
		OperateType: domain.OperateRegister,
		Name:        "lamp",
		Info: &domain.ModuleInfo{
			DefaultInstruct: []string{"turn on the lamp"},
			ConnectionKind:  domain.ConnectionRPC,
		},
	})
	runSubmodule(t, sm, domain.ModuleOperate{OperateType: domain.OperateOffline, Name: "lamp"})

	if store.Get("lamp") != nil {
		t.Fatalf("expected lamp removed from store")
	}
	if len(m.Calls("Mutate")) != 2 {
		t.Fatalf("expected 2 matcher mutates (register, offline), got %d", len(m.Calls("Mutate")))
	}
	client := factory.Client.(*testsupport.Client)
	if !client.Closed {
		t.Fatalf("expected client closed on offline")
	}
}

func TestSubmoduleManagerOfflineUnknownNameIsNoOp(t *testing.T) {
	sm, _, m, _ := newSubmoduleManager(t)

	runSubmodule(t, sm, domain.ModuleOperate{OperateType: domain.OperateOffline, Name: "ghost"})

	if len(m.Calls("Mutate")) != 0 {
		t.Fatalf("expected no matcher mutate for unregistered submodule")
	}
}

func TestSubmoduleManagerHeartbeatTouchesStore(t *testing.T) {
	sm, store, _, _ := newSubmoduleManager(t)

	runSubmodule(t, sm, domain.ModuleOperate{
		OperateType: domain.OperateRegister,
		Name:        "lamp",
		Info:        &domain.ModuleInfo{ConnectionKind: domain.ConnectionRPC},
	})
	runSubmodule(t, sm, domain.ModuleOperate{OperateType: domain.OperateHeartbeat, Name: "lamp"})

	if store.Get("lamp") == nil {
		t.Fatalf("expected lamp still registered")
	}
}

func TestSubmoduleManagerUpdateMutatesAddAndRemoveTogether(t *testing.T) {
	sm, store, m, _ := newSubmoduleManager(t)

	runSubmodule(t, sm, domain.ModuleOperate{
		OperateType: domain.OperateRegister,
		Name:        "lamp",
		Info: &domain.ModuleInfo{
			DefaultInstruct: []string{"turn on the lamp"},
			ConnectionKind:  domain.ConnectionRPC,
		},
	})
	m.Reset()

	runSubmodule(t, sm, domain.ModuleOperate{
		OperateType: domain.OperateUpdate,
		Name:        "lamp",
		Info: &domain.ModuleInfo{
			DefaultInstruct: []string{"turn off the lamp"},
			ConnectionKind:  domain.ConnectionRPC,
		},
	})

	// The diff (new points to add, stale UUIDs to remove) and the store
	// update must land in a single Mutate call, so the matcher's write
	// lock is held across both (spec.md:130).
	mutateCalls := m.Calls("Mutate")
	if len(mutateCalls) != 1 {
		t.Fatalf("expected 1 matcher mutate for update, got %d", len(mutateCalls))
	}
	add, ok := mutateCalls[0].Args[0].([]domain.PointPayload)
	if !ok || len(add) != 1 || add[0].Instruct != "turn off the lamp" {
		t.Fatalf("expected mutate to add the new phrase, got %+v", mutateCalls[0].Args[0])
	}
	removeUUIDs, ok := mutateCalls[0].Args[1].([]string)
	if !ok || len(removeUUIDs) != 1 {
		t.Fatalf("expected mutate to remove 1 stale point UUID, got %+v", mutateCalls[0].Args[1])
	}

	sub := store.Get("lamp")
	if _, ok := sub.DefaultInstructMap["turn off the lamp"]; !ok {
		t.Fatalf("expected new phrase present, got %+v", sub.DefaultInstructMap)
	}
	if _, ok := sub.DefaultInstructMap["turn on the lamp"]; ok {
		t.Fatalf("expected old phrase dropped, got %+v", sub.DefaultInstructMap)
	}
}
