package testsupport

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Client is a fake domain.Client that records calls and returns
// configured responses.
type Client struct {
	CallRecorder

	InstructCode domain.ResponseCode
	InstructErr  error
	ManipulateCode domain.ResponseCode
	ManipulateErr  error
	CloseErr       error

	Closed bool
}

func (c *Client) SendTextInstruct(ctx context.Context, phrase string) (domain.ResponseCode, error) {
	c.Record("SendTextInstruct", phrase)
	return c.InstructCode, c.InstructErr
}

func (c *Client) SendManipulate(ctx context.Context, m domain.ManipulateEntity) (domain.ResponseCode, error) {
	c.Record("SendManipulate", m)
	return c.ManipulateCode, c.ManipulateErr
}

func (c *Client) Close() error {
	c.Record("Close")
	c.Closed = true
	return c.CloseErr
}
