// Package rpcx is the gRPC transport (spec §4.4/§6, components
// C1/C7), grounded on the teacher's daemon/server.go and
// internal/daemon/server/server.go (grpc.NewServer, GracefulStop on
// cancellation). Because this repository hand-writes its wire
// messages instead of running protoc, the three services are
// registered as hand-built grpc.ServiceDesc values using the JSON
// codec below rather than protobuf-generated marshalers — this keeps
// google.golang.org/grpc as the real wire/transport library without
// fabricating generated code.
package rpcx

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals the rpcx wire messages as JSON instead of protobuf.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpcx: marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpcx: unmarshal %T: %w", v, err)
	}
	return nil
}
