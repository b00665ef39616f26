// Package ncerr defines the typed error kinds the control-protocol engine
// raises, so callers can errors.As instead of matching message strings.
package ncerr

import "fmt"

// DecodeError indicates a malformed packet: bad length or an out-of-range
// string-table pointer. The response carrying it is dropped.
type DecodeError struct {
	Offset int
	Length int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s (offset=%d length=%d)", e.Reason, e.Offset, e.Length)
}

// TransportError wraps a socket I/O failure. The send queue continues; the
// pending entry (if any) is left to time out.
type TransportError struct {
	Destination string
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Destination, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError indicates a pending message outlived the service's deadline
// without a correlated response. No retry is attempted automatically.
type TimeoutError struct {
	MessageIndex uint16
	CommandCode  uint16
	Destination  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: no response for message %#04x (command %#04x) to %s",
		e.MessageIndex, e.CommandCode, e.Destination)
}

// NotFoundError is surfaced to façade callers naming a device/channel that
// isn't in the registry.
type NotFoundError struct {
	Kind string // "device", "rx channel", "tx channel", "subscription"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// UnsupportedError indicates a peer declined an operation (volume-start
// sentinel byte, unrecognized status code). The operation returns without
// mutating domain state.
type UnsupportedError struct {
	Operation string
	Device    string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s unsupported on %s", e.Operation, e.Device)
}

// InvalidInputError is rejected before any packet is sent: a caller-supplied
// name, channel number, sample rate, or encoding violates the allowed set.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
