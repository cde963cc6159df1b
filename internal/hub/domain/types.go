// Package domain holds the wire-independent types shared by the submodule
// registry, the instruction matcher, and the four manager loops.
package domain

import "context"

// ConnectionKind identifies the transport a submodule registered over.
// It is set at registration and never changes for the life of the
// submodule (spec §3, Submodule.connection_kind).
type ConnectionKind int

const (
	ConnectionUnknown ConnectionKind = iota
	ConnectionRPC
	ConnectionLocalPipe
	ConnectionOSNamedPipe
	ConnectionHTTP
)

func (k ConnectionKind) String() string {
	switch k {
	case ConnectionRPC:
		return "rpc"
	case ConnectionLocalPipe:
		return "local_pipe"
	case ConnectionOSNamedPipe:
		return "os_named_pipe"
	case ConnectionHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Capability determines which outbound calls a submodule accepts.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityBoth
	CapabilityInstructOnly
	CapabilityManipulateOnly
)

// AcceptsInstruct reports whether the capability permits send_text_instruct.
func (c Capability) AcceptsInstruct() bool {
	return c == CapabilityBoth || c == CapabilityInstructOnly
}

// AcceptsManipulate reports whether the capability permits send_manipulate.
func (c Capability) AcceptsManipulate() bool {
	return c == CapabilityBoth || c == CapabilityManipulateOnly
}

// ResponseCode mirrors the RPC Resp.code enum (spec §6).
type ResponseCode int

const (
	ResponseSuccess ResponseCode = iota
	ResponseUnableToProcess
	ResponseUnknownError
	ResponseNotSupported
)

func (r ResponseCode) String() string {
	switch r {
	case ResponseSuccess:
		return "success"
	case ResponseUnableToProcess:
		return "unable_to_process"
	case ResponseNotSupported:
		return "not_supported"
	default:
		return "unknown_error"
	}
}

// Client is the outbound handle a Submodule uses to receive routed work.
// Client implementations do not check the submodule's Capability; the
// instruct and manipulate managers skip a call the Capability does not
// accept and log it with ResponseUnableToProcess (spec §3).
type Client interface {
	SendTextInstruct(ctx context.Context, phrase string) (ResponseCode, error)
	SendManipulate(ctx context.Context, m ManipulateEntity) (ResponseCode, error)
	// Close releases any underlying connection. Safe to call more than once.
	Close() error
}

// PointPayload is one indexed (vector, metadata) pair in the matcher.
// Owned by the matcher; referenced by the owning Submodule's
// DefaultInstructMap so the registry and the matcher can be kept coherent
// (invariant I1).
type PointPayload struct {
	UUID          string
	SubmoduleName string
	Instruct      string
	Encode        []float32
}

// Submodule is one registered fleet member (spec §3).
type Submodule struct {
	Name              string
	AuthID            string
	ConnectionKind    ConnectionKind
	Capability        Capability
	DefaultInstructMap map[string]PointPayload
	HeartbeatTime     int64 // unix seconds
	Client            Client
}

// Points returns a snapshot slice of every PointPayload currently owned by
// this submodule's default-instruction map. Safe to call without holding
// the store lock once the Submodule value itself has been copied out.
func (s *Submodule) Points() []PointPayload {
	out := make([]PointPayload, 0, len(s.DefaultInstructMap))
	for _, p := range s.DefaultInstructMap {
		out = append(out, p)
	}
	return out
}

// OperateType is the ModuleOperate discriminant (spec §3).
type OperateType int

const (
	OperateRegister OperateType = iota
	OperateOffline
	OperateHeartbeat
	OperateUpdate
)

func (t OperateType) String() string {
	switch t {
	case OperateRegister:
		return "register"
	case OperateOffline:
		return "offline"
	case OperateHeartbeat:
		return "heartbeat"
	case OperateUpdate:
		return "update"
	default:
		return "undefined"
	}
}

// ModuleInfo carries the registration/update payload of a ModuleOperate.
type ModuleInfo struct {
	DefaultInstruct []string
	ConnectionKind  ConnectionKind
	Capability      Capability
	ConnConfig      map[string]string // opaque, transport-specific (spec: conn_params)
}

// ModuleOperate is the ephemeral message consumed by the submodule manager
// loop (spec §3, §4.6.1).
type ModuleOperate struct {
	OperateType OperateType
	Name        string
	Info        *ModuleInfo // present iff OperateType in {Register, Update}
}

// InstructPayloadKind distinguishes reserved instruct payload variants.
// Only Text is implemented; anything else must be dropped (spec §4.6.2).
type InstructPayloadKind int

const (
	InstructPayloadText InstructPayloadKind = iota
	InstructPayloadReserved
)

// InstructEntity is an inbound natural-language instruction (spec §3, §6).
type InstructEntity struct {
	PayloadKind                InstructPayloadKind
	Text                       string
	ReceiveManipulateSubmodule string
}

// ManipulateType distinguishes manipulate variants. OfflineType is
// rejected by the manipulate manager — lifecycle changes only travel
// through ModuleOperate (spec §4.6.3).
type ManipulateType int

const (
	ManipulateSimple ManipulateType = iota
	ManipulateTextDisplay
	ManipulateOfflineType
)

// ManipulateEntity is an inbound structured command addressed by name
// (spec §3, §6).
type ManipulateEntity struct {
	ManipulateType ManipulateType
	UseModuleName  string
	Text           string // populated for ManipulateTextDisplay
	Payload        map[string]string
}
