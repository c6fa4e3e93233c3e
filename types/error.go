package types

import "fmt"

// ErrorCode represents a unified error code across the session core.
type ErrorCode string

const (
	// ErrInvalidGraph marks a graph document that fails structural
	// validation on load or before serialization.
	ErrInvalidGraph ErrorCode = "INVALID_GRAPH"
	// ErrConfigInvalid marks a workflow the backend rejected with a
	// schema-validation response (HTTP 422).
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ErrTransportFailure marks a network failure, a non-OK response, or a
	// response with no streaming body.
	ErrTransportFailure ErrorCode = "TRANSPORT_FAILURE"
	// ErrMalformedRecord marks an event record whose payload could not be
	// parsed. Recovered locally; never terminates a stream.
	ErrMalformedRecord ErrorCode = "MALFORMED_RECORD"
	// ErrInternal marks unexpected failures inside the session core.
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is a structured error with code, message, and optional HTTP status.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code associated with the error.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
