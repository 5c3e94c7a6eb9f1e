package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid enqueue request")
	ErrMissingTaskID  = errors.New("daemon did not return a task ID")
)

// TransportError reports that the HTTP request to the daemon could not
// complete.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError reports that the daemon was reachable but answered with an
// unexpected status code.
type ServiceError struct {
	StatusCode int
	Body       []byte
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("daemon returned status %d: %s", e.StatusCode, e.Body)
}
