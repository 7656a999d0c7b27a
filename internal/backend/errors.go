package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrServer matches any *ServerError.
	ErrServer = errors.New("server error")
	// ErrNetwork matches any *NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse marks a body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// ServerError is a completed request the backend did not accept, or whose
// body could not be understood.
type ServerError struct {
	StatusCode int
	// Message is the backend's own explanation, empty when it sent none.
	Message string
	Cause   error
}

func (e *ServerError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("backend returned %d: %v", e.StatusCode, e.Cause)
	default:
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
}

func (e *ServerError) Unwrap() error { return e.Cause }

func (e *ServerError) Is(target error) bool { return target == ErrServer }

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
