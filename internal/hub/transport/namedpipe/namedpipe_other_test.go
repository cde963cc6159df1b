//go:build !windows

package namedpipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
	"github.com/terminalhub/hub/internal/hub/transport/namedpipe"
)

func TestServeReturnsNotSupportedOffWindows(t *testing.T) {
	srv := namedpipe.New("module", "instruct", "manipulate")
	err := srv.Serve(context.Background(), transport.Inbox{})
	if !errors.Is(err, domain.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestDialReturnsNotSupportedOffWindows(t *testing.T) {
	var f namedpipe.ClientFactory
	_, err := f.Dial(context.Background(), map[string]string{})
	if !errors.Is(err, domain.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
