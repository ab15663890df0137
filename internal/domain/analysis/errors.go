package analysis

import (
	"errors"
	"fmt"
)

// ErrBlankCustomer blocks a run without surfacing an error banner.
var ErrBlankCustomer = errors.New("customer name is blank")

// ErrInvalidRequest marks run parameters outside the recognized set.
var ErrInvalidRequest = errors.New("invalid run request")

// ProtocolError is a non-2xx answer from the backend.
type ProtocolError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.StatusText, e.Body)
}

// TransportError is a request that got no response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
