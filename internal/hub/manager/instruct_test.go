package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/manager"
	"github.com/terminalhub/hub/internal/hub/testsupport"
)

func TestInstructManagerRoutesMatchedInstructToClient(t *testing.T) {
	store := testsupport.NewStore()
	client := &testsupport.Client{InstructCode: domain.ResponseSuccess}
	if err := store.Insert(&domain.Submodule{Name: "lamp", Capability: domain.CapabilityBoth, Client: client}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	m := &testsupport.Matcher{SearchResult: domain.PointPayload{SubmoduleName: "lamp"}}
	im := &manager.InstructManager{Deps: manager.Deps{
		Store:   store,
		Matcher: m,
		Encoder: &testsupport.Encoder{Vector: []float32{1, 0}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.InstructEntity)
	shutdown := make(chan string, 1)
	go im.Run(ctx, in, shutdown)

	in <- domain.InstructEntity{PayloadKind: domain.InstructPayloadText, Text: "turn on the lamp"}
	time.Sleep(20 * time.Millisecond)

	if len(client.Calls("SendTextInstruct")) != 1 {
		t.Fatalf("expected 1 SendTextInstruct call, got %d", len(client.Calls("SendTextInstruct")))
	}
}

func TestInstructManagerRejectsManipulateOnlyCapability(t *testing.T) {
	store := testsupport.NewStore()
	client := &testsupport.Client{InstructCode: domain.ResponseSuccess}
	if err := store.Insert(&domain.Submodule{Name: "lamp", Capability: domain.CapabilityManipulateOnly, Client: client}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	m := &testsupport.Matcher{SearchResult: domain.PointPayload{SubmoduleName: "lamp"}}
	im := &manager.InstructManager{Deps: manager.Deps{
		Store:   store,
		Matcher: m,
		Encoder: &testsupport.Encoder{Vector: []float32{1, 0}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.InstructEntity)
	shutdown := make(chan string, 1)
	go im.Run(ctx, in, shutdown)

	in <- domain.InstructEntity{PayloadKind: domain.InstructPayloadText, Text: "turn on the lamp"}
	time.Sleep(20 * time.Millisecond)

	if len(client.Calls("SendTextInstruct")) != 0 {
		t.Fatalf("expected a manipulate-only submodule to never receive send_text_instruct, got %d calls", len(client.Calls("SendTextInstruct")))
	}
}

func TestInstructManagerDropsNonTextPayload(t *testing.T) {
	m := &testsupport.Matcher{}
	im := &manager.InstructManager{Deps: manager.Deps{
		Store:   testsupport.NewStore(),
		Matcher: m,
		Encoder: &testsupport.Encoder{},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.InstructEntity)
	shutdown := make(chan string, 1)
	go im.Run(ctx, in, shutdown)

	in <- domain.InstructEntity{PayloadKind: domain.InstructPayloadReserved, Text: "ignored"}
	time.Sleep(20 * time.Millisecond)

	if len(m.Calls("Search")) != 0 {
		t.Fatalf("expected no matcher search for a reserved payload")
	}
}

func TestInstructManagerDropsOnNoMatch(t *testing.T) {
	m := &testsupport.Matcher{SearchErr: domain.ErrNotFound}
	im := &manager.InstructManager{Deps: manager.Deps{
		Store:   testsupport.NewStore(),
		Matcher: m,
		Encoder: &testsupport.Encoder{Vector: []float32{1, 0}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan domain.InstructEntity)
	shutdown := make(chan string, 1)
	go im.Run(ctx, in, shutdown)

	in <- domain.InstructEntity{PayloadKind: domain.InstructPayloadText, Text: "nothing matches this"}
	time.Sleep(20 * time.Millisecond)
	// No assertion beyond "does not panic/block" — a drop only logs a warning.
}
