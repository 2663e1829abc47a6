package posts

import (
	"errors"
	"fmt"
	"net/http"
)

// Generic messages for failures that carry no server-provided detail
const (
	MsgNetworkError    = "Network error: unable to reach the server"
	MsgInvalidResponse = "Invalid response from server"
)

// APIError is the single error shape returned by Client implementations.
// StatusCode is 0 for failures that never produced an HTTP response.
type APIError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewStatusError builds the error for a non-2xx response.
// detail is the server-provided message; an empty detail falls back to the status.
func NewStatusError(statusCode int, detail string) error {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error: %d", statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// NewNetworkError wraps a transport-level failure
func NewNetworkError(cause error) error {
	return &APIError{Message: MsgNetworkError, Err: cause}
}

// NewDecodeError wraps a failure to decode a successful response
func NewDecodeError(statusCode int, cause error) error {
	return &APIError{StatusCode: statusCode, Message: MsgInvalidResponse, Err: cause}
}

// IsNetworkError reports whether err is a transport failure with no HTTP status
func IsNetworkError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}

// IsNotFound reports whether the server answered 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the user-facing message of err, or fallback when err has none
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
