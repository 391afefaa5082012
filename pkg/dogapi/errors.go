package dogapi

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when a request URL cannot be built from the
// configured base URL and the caller's input.
var ErrInvalidRequest = errors.New("dogapi: invalid request")

// ServiceError reports a non-success status, a transport failure or an
// empty result from the service.
type ServiceError struct {
	Message    string
	StatusCode int    // zero when no response was received
	Body       string // trimmed response snippet, if any
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s body: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// DecodingError reports a response body that does not match the expected JSON shape.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("dogapi: decode response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
