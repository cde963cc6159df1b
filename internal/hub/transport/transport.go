// Package transport defines the pluggable inbound/outbound adapter
// contract (spec §4.4, components C1/C7). Concrete backends live in
// the rpcx, localpipe, and namedpipe subpackages; HTTP is declared in
// domain.ConnectionKind but has no implementation (spec §4.4: "declared
// but unimplemented").
package transport

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Inbox is where a transport server pushes decoded messages. The
// three manager loops each own one of these channels. The supervisor
// creates them with a fixed buffer (channelBufferSize), so the
// channels are bounded: a transport's send blocks while the buffer is
// full.
type Inbox struct {
	SubmoduleOperate chan<- domain.ModuleOperate
	Instruct         chan<- domain.InstructEntity
	Manipulate       chan<- domain.ManipulateEntity
}

// Server is the inbound half of a transport: it accepts peer
// connections and decodes them onto an Inbox until ctx is cancelled,
// at which point it must perform a graceful shutdown and return.
type Server interface {
	Serve(ctx context.Context, inbox Inbox) error
}

// ClientFactory builds an outbound domain.Client for a submodule whose
// conn_config names this transport's connection parameters (spec §6:
// grpc_addr, instruct_windows_named_pipe, ...). Each transport package
// exposes one.
type ClientFactory interface {
	Dial(ctx context.Context, connConfig map[string]string) (domain.Client, error)
}
