package ddbg

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a DebugError.
type ErrorCode int

const (
	// ErrCodeUnknown represents an unknown error
	ErrCodeUnknown ErrorCode = iota

	// ErrCodeMalformedDestination means the destination string could not be
	// parsed (bad tcp:// or nats:// syntax). Never retried.
	ErrCodeMalformedDestination

	// ErrCodeResourceUnavailable means the destination resource could not be
	// created: the file could not be opened or the connection refused. The
	// cache holds no entry afterwards, so the next call attempts creation
	// again.
	ErrCodeResourceUnavailable

	// ErrCodeWriteFailed means an established writer failed mid-stream
	// (broken pipe, peer reset, disk error). The cached writer is evicted so
	// the next call to the same destination starts fresh.
	ErrCodeWriteFailed
)

// String returns the string representation of an error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeMalformedDestination:
		return "malformed_destination"
	case ErrCodeResourceUnavailable:
		return "resource_unavailable"
	case ErrCodeWriteFailed:
		return "write_failed"
	default:
		return "unknown"
	}
}

// DebugError is the structured error returned by all ddbg operations.
type DebugError struct {
	Code ErrorCode
	Op   string // operation that failed: "parse", "open", "connect", "write"
	Dest string // raw destination string as given by the caller
	Err  error  // underlying error
}

// Error implements the error interface.
func (e *DebugError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ddbg: %s %q: %v", e.Op, e.Dest, e.Err)
	}
	return fmt.Sprintf("ddbg: %s %q: %s", e.Op, e.Dest, e.Code)
}

// Unwrap returns the underlying error.
func (e *DebugError) Unwrap() error {
	return e.Err
}

// Is matches another DebugError by code, so callers can compare against a
// bare &DebugError{Code: ...} with errors.Is.
func (e *DebugError) Is(target error) bool {
	t, ok := target.(*DebugError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newDebugError(code ErrorCode, op, dest string, err error) *DebugError {
	return &DebugError{Code: code, Op: op, Dest: dest, Err: err}
}

func errorCode(err error) ErrorCode {
	var de *DebugError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeUnknown
}

// IsMalformedDestination reports whether err is a destination parse failure.
func IsMalformedDestination(err error) bool {
	return errorCode(err) == ErrCodeMalformedDestination
}

// IsResourceUnavailable reports whether err is a writer creation failure.
func IsResourceUnavailable(err error) bool {
	return errorCode(err) == ErrCodeResourceUnavailable
}

// IsWriteFailed reports whether err is a mid-stream write failure.
func IsWriteFailed(err error) bool {
	return errorCode(err) == ErrCodeWriteFailed
}
