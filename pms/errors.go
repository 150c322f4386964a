package pms

import "errors"

var (
	// ErrNotFound is returned for 404s (unknown property, room, or record).
	ErrNotFound = errors.New("pms: resource not found")

	// ErrRejected is returned when the PMS refuses the request (4xx other
	// than 404). The RequestError wrapping it carries the server's message.
	ErrRejected = errors.New("pms: request rejected")

	// ErrUnavailable is returned for transport failures and 5xx responses.
	ErrUnavailable = errors.New("pms: service unavailable")
)

// RequestError carries the server-provided message for display near the form
// that caused it.
type RequestError struct {
	Op      string // operation name, e.g. "place hold"
	Status  int    // HTTP status, 0 for transport errors
	Message string // server message or generic fallback
	kind    error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.kind }
