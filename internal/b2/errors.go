package b2

import (
	"errors"
	"fmt"
)

// Kind identifies which step of the B2 protocol an error came from.
type Kind string

const (
	// KindTransport covers network, DNS and timeout failures. The failing
	// step is recorded in Message; the cause is preserved for Unwrap.
	KindTransport Kind = "transport"
	KindAuth      Kind = "auth"
	KindLease     Kind = "lease"
	KindUpload    Kind = "upload"
	KindLookup    Kind = "lookup"
	KindDelete    Kind = "delete"
)

// Error is the kind-tagged error returned by every Client operation.
// Status carries the remote HTTP status when one was received (0 otherwise).
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("b2 %s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("b2 %s: %s (status %d)", e.Kind, e.Message, e.Status)
	default:
		return fmt.Sprintf("b2 %s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == k
}

// transportErr wraps a failed round trip with the step it happened in.
func transportErr(step string, err error) *Error {
	return &Error{Kind: KindTransport, Message: step, Err: err}
}

// remoteErr builds a failure from a normalized non-success envelope,
// preferring the remote-provided message over the fallback.
func remoteErr(kind Kind, env Envelope, fallback string) *Error {
	msg := env.Message()
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: kind, Status: env.StatusCode, Message: msg}
}
