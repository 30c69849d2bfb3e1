// Package errdefs defines the error taxonomy shared by all typec-go
// packages. Callers distinguish error classes with errors.Is and
// errors.As rather than string matching.
package errdefs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the non-fatal and caller-fault classes.
var (
	// ErrNotSupported indicates the platform or partner does not
	// implement the requested operation. Enumeration tools treat it
	// as "skip and continue", never as a failure.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidArgument indicates a request that is malformed before
	// it ever reaches a backend, such as an out-of-range connector
	// index.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed indicates use of a session or backend after Close.
	ErrClosed = errors.New("session closed")
)

// TransportError indicates the mechanism for reaching the platform
// policy manager failed: the command could not be delivered or the
// response never arrived.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport: %s failed", e.Op)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError for operation op.
func Transport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// ProtocolError indicates the platform responded, but with data that
// violates the structure the protocol mandates: reserved bit patterns,
// truncated responses or responses inconsistent with the request.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// Protocol returns a ProtocolError with a formatted reason.
func Protocol(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedRevisionError indicates a response declared a
// specification revision this library has no layout tables for.
// It unwraps to ErrNotSupported so enumeration treats it as a skip.
// Revision holds the BCD-coded revision from the response.
type UnsupportedRevisionError struct {
	Revision uint16
}

func (e *UnsupportedRevisionError) Error() string {
	return fmt.Sprintf("unsupported specification revision %x.%x",
		e.Revision>>8, e.Revision&0xFF)
}

func (e *UnsupportedRevisionError) Unwrap() error { return ErrNotSupported }

// UnsupportedRevision returns an UnsupportedRevisionError for the
// BCD-coded revision rev.
func UnsupportedRevision(rev uint16) error {
	return &UnsupportedRevisionError{Revision: rev}
}

// IsFatal reports whether err should abort a query sweep. Not-supported
// conditions are the only non-fatal class; everything else, including
// transport and protocol failures, is fatal to the operation that
// produced it (though not to the session).
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNotSupported)
}
