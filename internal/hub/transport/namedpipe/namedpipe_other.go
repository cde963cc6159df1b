//go:build !windows

// Package namedpipe is the non-Windows build of the OSNamedPipe
// transport: it always reports domain.ErrNotSupported, matching spec
// §4.4's statement that the HTTP transport (and, by the same reasoning,
// a Windows-only transport off Windows) returns NotSupported.
package namedpipe

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
)

// Server is a stub: Serve always fails with domain.ErrNotSupported.
type Server struct{}

// New returns a stub Server; the arguments are accepted for signature
// parity with the Windows build and otherwise unused.
func New(_, _, _ string) *Server { return &Server{} }

func (s *Server) Serve(context.Context, transport.Inbox) error {
	return domain.ErrNotSupported
}

// ClientFactory is a stub: Dial always fails with domain.ErrNotSupported.
type ClientFactory struct{}

func (ClientFactory) Dial(context.Context, map[string]string) (domain.Client, error) {
	return nil, domain.ErrNotSupported
}
