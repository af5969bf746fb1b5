package remote

import (
	"fmt"
	"net/http"
)

// ServerError is a non-success HTTP status from the backend.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
}

// TransportError wraps a connection-level failure: dial, timeout, DNS,
// or a body cut short.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
