// Package mockencoder implements the encoder.Encoder contract's required
// mock variant (spec §4.1): it answers Dimension but fails every Encode.
package mockencoder

import (
	"context"
	"errors"

	"github.com/terminalhub/hub/internal/hub/domain"
)

// Encoder always fails Encode with a domain.EncoderError; Dimension
// returns the configured constant (0 if unset).
type Encoder struct {
	dim uint64
}

// New returns a mock encoder reporting dim as its dimension.
func New(dim uint64) *Encoder {
	return &Encoder{dim: dim}
}

func (e *Encoder) Encode(_ context.Context, _ string) ([]float32, error) {
	return nil, domain.NewEncoderError(errors.New("mock encoder: encode always fails"))
}

func (e *Encoder) Dimension() uint64 { return e.dim }
