package transport

import (
	"errors"
	"fmt"
)

// TransportError means the server was never reached: no connectivity,
// timeout, or an open circuit breaker. The user-facing message is fixed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Message holds the server-provided
// text when the body carried one, otherwise the per-operation fallback.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// ValidationError is a client-side rejection raised before any network
// call is attempted. Message is the user-facing text; Err carries the
// domain sentinel so callers can still match with errors.Is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

const unreachableMessage = "couldn't reach server, check your connection"

// UserMessage maps any engine error onto the string a screen should show.
func UserMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return unreachableMessage
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
