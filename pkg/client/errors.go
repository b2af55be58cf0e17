package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client and the pagination layer.
var (
	// ErrRemoteUnavailable is returned when the transport fails to complete a request.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrMalformedResponse is returned when a response body lacks the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// RequestError represents a failed openFDA request with additional context.
type RequestError struct {
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openFDA %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("openFDA %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// networkError wraps a transport failure so that it matches ErrRemoteUnavailable.
func networkError(url string, err error) *RequestError {
	return &RequestError{
		URL:        url,
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        fmt.Errorf("%w: %v", ErrRemoteUnavailable, err),
	}
}
