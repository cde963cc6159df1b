// Package encoder defines the instruction-encoding contract (spec §4.1,
// component C2). Concrete backends live in the httpencoder and
// mockencoder subpackages.
package encoder

import "context"

// Encoder converts a text phrase into a fixed-length embedding vector.
// Encode is deterministic for identical input within a process lifetime
// and may fail with a domain.EncoderError on model or tokenizer
// malfunction — that failure must be surfaced to the caller, never
// fatal to the process. Dimension is constant for the component's
// lifetime; re-configuring an Encoder requires discarding the matcher
// (invariant I3).
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimension() uint64
}
