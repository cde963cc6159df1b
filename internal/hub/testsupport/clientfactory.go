package testsupport

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// ClientFactory is a fake transport.ClientFactory that hands back a
// preconfigured Client, or fails if DialErr is set.
type ClientFactory struct {
	Client  domain.Client
	DialErr error
}

func (f *ClientFactory) Dial(context.Context, map[string]string) (domain.Client, error) {
	if f.DialErr != nil {
		return nil, f.DialErr
	}
	return f.Client, nil
}
