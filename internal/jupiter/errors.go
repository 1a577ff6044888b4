package jupiter

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for classifying failures with errors.Is.
var (
	ErrTransport = errors.New("jupiter: transport error")
	ErrDecode    = errors.New("jupiter: decode error")
	ErrService   = errors.New("jupiter: service error")

	ErrMissingSwapTransaction = errors.New("swapTransaction is missing")
)

// TransportError wraps a failure to reach the service or read its response.
type TransportError struct {
	Op  Operation
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("jupiter %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// HTTPError is a non-2xx response that did not carry a service error envelope.
type HTTPError struct {
	Op         Operation
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("jupiter %s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("jupiter %s: http %d: %s", e.Op, e.StatusCode, b)
}

func (e *HTTPError) Unwrap() error { return ErrTransport }

// DecodeError reports a response that could not be turned into the expected
// value. Stage names the part that failed, e.g. "response", "setup:base64",
// "swap:binary" or "mintKeys".
type DecodeError struct {
	Op    Operation
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("jupiter: decode %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("jupiter %s: decode %s: %v", e.Op, e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// ServiceError is an error envelope returned by the service itself.
type ServiceError struct {
	Op         Operation
	StatusCode int // 0 when the envelope came with a 2xx status
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("jupiter %s: service error (http %d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("jupiter %s: service error: %s", e.Op, msg)
}

func (e *ServiceError) Unwrap() error { return ErrService }

// IndexOutOfRangeError is raised while decompressing an indexed route map.
type IndexOutOfRangeError struct {
	Field string // "source" or "destination"
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("jupiter: route map %s index %d out of range [0,%d)", e.Field, e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrDecode }

// AddressParseError is returned when a string is not a valid account address.
type AddressParseError struct {
	Input string
	Index int // position in mintKeys, -1 when not applicable
	Err   error
}

func (e *AddressParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("jupiter: invalid address %q at mintKeys[%d]: %v", e.Input, e.Index, e.Err)
	}
	return fmt.Sprintf("jupiter: invalid address %q: %v", e.Input, e.Err)
}

func (e *AddressParseError) Unwrap() []error { return []error{ErrDecode, e.Err} }
