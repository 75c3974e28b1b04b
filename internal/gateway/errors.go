package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call to the backend or the container control plane.
type Kind int

const (
	// ProcessFailure: the call itself failed (connection refused, container down, timeout).
	ProcessFailure Kind = iota + 1
	// UpstreamError: the backend answered but reported failure.
	UpstreamError
	// MalformedResponse: the body did not have the expected shape.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case ProcessFailure:
		return "process failure"
	case UpstreamError:
		return "upstream error"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is returned by every gateway call that reached the transport.
type Error struct {
	Kind   Kind
	Op     string // e.g. "GET /account/id"
	Status int    // upstream HTTP status, when known
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err wraps a gateway *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}

// sentinel errors for calls rejected before reaching the transport
var (
	ErrEndpointNotAllowed = errors.New("endpoint not allowed")
	ErrMethodNotAllowed   = errors.New("method not allowed for endpoint")
)
