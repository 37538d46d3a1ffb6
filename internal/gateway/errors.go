package gateway

import (
	"errors"
	"fmt"

	"bookkeeping/internal/core"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport failure")
	// ErrBackendRejected matches every *RejectedError.
	ErrBackendRejected = errors.New("backend rejected request")
	// ErrSessionExpired matches a *RejectedError whose envelope carries the
	// session-expired code. A 407 envelope that is not rejected comes back
	// with a nil error; check Envelope.SessionExpired for that case.
	ErrSessionExpired = errors.New("session expired")
)

// TransportError is a call that never produced a backend envelope: the
// request could not be built or sent, or the reply was not an envelope.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// RejectedError carries the full envelope of a call the backend refused.
type RejectedError struct {
	Envelope core.Envelope
}

func (e *RejectedError) Error() string {
	if e.Envelope.Msg == "" {
		return fmt.Sprintf("backend rejected request: code %d", e.Envelope.Code)
	}
	return fmt.Sprintf("backend rejected request: code %d: %s", e.Envelope.Code, e.Envelope.Msg)
}

func (e *RejectedError) Is(target error) bool {
	switch target {
	case ErrBackendRejected:
		return true
	case ErrSessionExpired:
		return e.Envelope.SessionExpired()
	}
	return false
}
