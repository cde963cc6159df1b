package testsupport

import "context"

// Encoder is a fake encoder.Encoder returning a fixed vector, or an
// error if EncodeErr is set.
type Encoder struct {
	Vector    []float32
	EncodeErr error
}

func (e *Encoder) Encode(context.Context, string) ([]float32, error) {
	if e.EncodeErr != nil {
		return nil, e.EncodeErr
	}
	return e.Vector, nil
}
