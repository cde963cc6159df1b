package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors from the §7 taxonomy. Compare with errors.Is.
var (
	// ErrNotFound is returned by the matcher when the index is empty or no
	// candidate meets the confidence threshold (spec §4.2).
	ErrNotFound = errors.New("hub: no match above confidence threshold")
	// ErrAlreadyRegistered is a RegistryError: duplicate name on Register.
	ErrAlreadyRegistered = errors.New("hub: submodule already registered")
	// ErrUnknownSubmodule is a RegistryError: name absent on
	// offline/heartbeat/update/manipulate.
	ErrUnknownSubmodule = errors.New("hub: unknown submodule")
	// ErrUnableToProcess names a call made against a capability the
	// submodule did not register for. The manager loops check Capability
	// before calling a Client, so no Client implementation here returns it.
	ErrUnableToProcess = errors.New("hub: submodule cannot process this call")
	// ErrNotSupported marks a transport or RPC surface that is declared in
	// the wire contract but intentionally unimplemented (HTTP transport,
	// the reserved streaming RPCs, OS named pipes off Windows).
	ErrNotSupported = errors.New("hub: not supported")
	// ErrChannelClosed marks an internal queue whose receiver has gone
	// away; always fatal to the sending loop (spec §7).
	ErrChannelClosed = errors.New("hub: internal channel closed")
)

// EncoderError wraps an embedding-model or tokenizer failure. Reported to
// the caller of Encode; never fatal to the process (spec §4.1, §7).
type EncoderError struct {
	Cause error
}

func (e *EncoderError) Error() string { return fmt.Sprintf("encoder: %v", e.Cause) }
func (e *EncoderError) Unwrap() error  { return e.Cause }

// NewEncoderError wraps cause as an EncoderError.
func NewEncoderError(cause error) error { return &EncoderError{Cause: cause} }

// MatcherError wraps an ANN backend failure distinct from ErrNotFound
// (transport errors, invariant violations detected by the backend).
type MatcherError struct {
	Cause error
}

func (e *MatcherError) Error() string { return fmt.Sprintf("matcher: %v", e.Cause) }
func (e *MatcherError) Unwrap() error  { return e.Cause }

// NewMatcherError wraps cause as a MatcherError.
func NewMatcherError(cause error) error { return &MatcherError{Cause: cause} }

// TransportError wraps a decode failure, short read, or peer hang-up on an
// inbound connection, or a dial/call failure on an outbound one. The
// Inbound flag tells the caller which side's recovery path applies
// (spec §7): inbound errors end one peer's loop; outbound errors leave
// the submodule registered until its heartbeat expires.
type TransportError struct {
	Inbound bool
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Inbound {
		return fmt.Sprintf("transport(inbound): %v", e.Cause)
	}
	return fmt.Sprintf("transport(outbound): %v", e.Cause)
}
func (e *TransportError) Unwrap() error { return e.Cause }

// NewInboundTransportError wraps cause as an inbound TransportError.
func NewInboundTransportError(cause error) error {
	return &TransportError{Inbound: true, Cause: cause}
}

// NewOutboundTransportError wraps cause as an outbound TransportError.
func NewOutboundTransportError(cause error) error {
	return &TransportError{Inbound: false, Cause: cause}
}

// ConfigError is fatal at boot; it names the offending configuration key
// so main can print a precise diagnostic (spec §7).
type ConfigError struct {
	Key   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("config: %s", e.Key)
}
func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError builds a ConfigError naming the missing/invalid key.
func NewConfigError(key string, cause error) error {
	return &ConfigError{Key: key, Cause: cause}
}
