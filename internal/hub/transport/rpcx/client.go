package rpcx

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Client is the outbound half of the gRPC transport: it dials a
// submodule's grpc_addr and invokes Instruct/Manipulate RPCs against
// it using the same hand-rolled JSON codec as the server.
type Client struct {
	conn *grpc.ClientConn
	addr string
}

// ClientFactory builds rpcx clients from conn_config (transport.ClientFactory).
type ClientFactory struct{}

func (ClientFactory) Dial(ctx context.Context, connConfig map[string]string) (domain.Client, error) {
	addr, ok := connConfig["grpc_addr"]
	if !ok || addr == "" {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("rpcx: conn_config missing grpc_addr"))
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("rpcx: dial %s: %w", addr, err))
	}
	return &Client{conn: conn, addr: addr}, nil
}

func (c *Client) SendTextInstruct(ctx context.Context, phrase string) (domain.ResponseCode, error) {
	req := &TextInstruct{InstructType: int(domain.InstructPayloadText), Instruct: phrase}
	resp := new(Resp)
	if err := c.conn.Invoke(ctx, "/hub.Instruct/SendTextInstruct", req, resp); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(fmt.Errorf("rpcx: send text instruct to %s: %w", c.addr, err))
	}
	return domain.ResponseCode(resp.Code), nil
}

func (c *Client) SendManipulate(ctx context.Context, m domain.ManipulateEntity) (domain.ResponseCode, error) {
	var method string
	var req any
	switch m.ManipulateType {
	case domain.ManipulateTextDisplay:
		method = "/hub.Manipulate/SendTextDisplayManipulate"
		req = &TextDisplayManipulate{UseModuleName: m.UseModuleName, Text: m.Text}
	default:
		method = "/hub.Manipulate/SendSimpleManipulate"
		req = &SimpleManipulate{ManipulateType: int(m.ManipulateType), UseModuleName: m.UseModuleName, Payload: m.Payload}
	}

	resp := new(Resp)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(fmt.Errorf("rpcx: send manipulate to %s: %w", c.addr, err))
	}
	return domain.ResponseCode(resp.Code), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
