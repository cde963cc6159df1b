package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/manager"
	"github.com/terminalhub/hub/internal/hub/testsupport"
)

func TestManipulateManagerRoutesByName(t *testing.T) {
	store := testsupport.NewStore()
	client := &testsupport.Client{ManipulateCode: domain.ResponseSuccess}
	if err := store.Insert(&domain.Submodule{Name: "fan", Capability: domain.CapabilityBoth, Client: client}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mm := &manager.ManipulateManager{Deps: manager.Deps{Store: store}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.ManipulateEntity)
	shutdown := make(chan string, 1)
	go mm.Run(ctx, in, shutdown)

	in <- domain.ManipulateEntity{ManipulateType: domain.ManipulateSimple, UseModuleName: "fan"}
	time.Sleep(20 * time.Millisecond)

	if len(client.Calls("SendManipulate")) != 1 {
		t.Fatalf("expected 1 SendManipulate call, got %d", len(client.Calls("SendManipulate")))
	}
}

func TestManipulateManagerRejectsInstructOnlyCapability(t *testing.T) {
	store := testsupport.NewStore()
	client := &testsupport.Client{ManipulateCode: domain.ResponseSuccess}
	if err := store.Insert(&domain.Submodule{Name: "fan", Capability: domain.CapabilityInstructOnly, Client: client}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mm := &manager.ManipulateManager{Deps: manager.Deps{Store: store}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.ManipulateEntity)
	shutdown := make(chan string, 1)
	go mm.Run(ctx, in, shutdown)

	in <- domain.ManipulateEntity{ManipulateType: domain.ManipulateSimple, UseModuleName: "fan"}
	time.Sleep(20 * time.Millisecond)

	if len(client.Calls("SendManipulate")) != 0 {
		t.Fatalf("expected an instruct-only submodule to never receive send_manipulate, got %d calls", len(client.Calls("SendManipulate")))
	}
}

func TestManipulateManagerRejectsOfflineType(t *testing.T) {
	store := testsupport.NewStore()
	client := &testsupport.Client{}
	if err := store.Insert(&domain.Submodule{Name: "fan", Capability: domain.CapabilityBoth, Client: client}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mm := &manager.ManipulateManager{Deps: manager.Deps{Store: store}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.ManipulateEntity)
	shutdown := make(chan string, 1)
	go mm.Run(ctx, in, shutdown)

	in <- domain.ManipulateEntity{ManipulateType: domain.ManipulateOfflineType, UseModuleName: "fan"}
	time.Sleep(20 * time.Millisecond)

	if len(client.Calls("SendManipulate")) != 0 {
		t.Fatalf("expected offline manipulate to be rejected, not forwarded")
	}
}

func TestManipulateManagerMissingTargetLogsAndContinues(t *testing.T) {
	mm := &manager.ManipulateManager{Deps: manager.Deps{Store: testsupport.NewStore()}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.ManipulateEntity)
	shutdown := make(chan string, 1)
	go mm.Run(ctx, in, shutdown)

	in <- domain.ManipulateEntity{ManipulateType: domain.ManipulateSimple, UseModuleName: "ghost"}
	time.Sleep(20 * time.Millisecond)
	// No assertion beyond "does not panic/block" for a missing target.
}
