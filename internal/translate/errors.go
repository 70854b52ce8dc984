package translate

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind partitions engine failures by how the caller should react.
type ErrorKind string

const (
	// ErrConfig: bad input caught before any network call. The caller
	// fixes the input; nothing is retried internally.
	ErrConfig ErrorKind = "config"
	// ErrTransport: network/HTTP failure. Quick translation falls back
	// from streaming to non-streaming exactly once on this kind.
	ErrTransport ErrorKind = "transport"
	// ErrFormat: provider content did not match the expected JSON shape
	// even after recovery. Never retried.
	ErrFormat ErrorKind = "format"
	// ErrCancelled: the operation was aborted. Always silent.
	ErrCancelled ErrorKind = "cancelled"
)

// Error is the engine's error type. Kind drives the propagation policy;
// Message is what callers display.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewConfigError reports invalid caller input.
func NewConfigError(msg string) *Error {
	return &Error{Kind: ErrConfig, Message: msg}
}

// NewTransportError wraps a network or HTTP failure.
func NewTransportError(msg string, err error) *Error {
	return &Error{Kind: ErrTransport, Message: msg, Err: err}
}

// NewFormatError reports provider output that could not be decoded.
func NewFormatError(msg string) *Error {
	return &Error{Kind: ErrFormat, Message: msg}
}

// NewCancelledError marks an aborted operation.
func NewCancelledError(err error) *Error {
	return &Error{Kind: ErrCancelled, Message: "operation cancelled", Err: err}
}

// KindOf extracts the ErrorKind from err, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// abortPatterns match transport errors that mean the caller went away.
// These are treated identically to explicit cancellation.
var abortPatterns = []string{
	"abort",
	"context canceled",
	"operation was canceled",
	"request canceled",
}

// isAbort reports whether err stems from cancellation, either the
// cooperative token or an abort-flavored transport failure.
func isAbort(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if KindOf(err) == ErrCancelled {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range abortPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
