package engine

import (
	"errors"
	"fmt"
)

// SyncError represents a failure detected while synchronizing.
//
// Most sync failures are logged and absorbed; SyncError exists so the
// few that cross a boundary (and everything that lands in a log) carry
// structured fields instead of bare strings.
type SyncError struct {
	// Code identifies the error category.
	Code SyncErrorCode

	// Message is a human-readable description.
	Message string

	// Variable names the affected variable, when one is involved.
	Variable string

	// Session identifies the affected session.
	Session string
}

// SyncErrorCode categorizes sync errors.
type SyncErrorCode string

const (
	// ErrCodeProtocolViolation indicates a structurally valid set
	// message naming a variable outside the tracked set. This is the
	// one inbound condition that escalates instead of being ignored.
	ErrCodeProtocolViolation SyncErrorCode = "PROTOCOL_VIOLATION"

	// ErrCodeDecodeFailed indicates an inbound payload that was not
	// valid newline-delimited JSON. The whole payload is discarded.
	ErrCodeDecodeFailed SyncErrorCode = "DECODE_FAILED"

	// ErrCodeTransportFailed indicates the connection errored or closed.
	ErrCodeTransportFailed SyncErrorCode = "TRANSPORT_FAILED"

	// ErrCodeStorageFailed indicates persistent storage raised on read
	// or write. Never propagated past the handler.
	ErrCodeStorageFailed SyncErrorCode = "STORAGE_FAILED"
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s (var=%s)", e.Code, e.Message, e.Variable)
	}
	if e.Session != "" {
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.Session)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewProtocolViolation creates a SyncError for a set naming an
// untracked variable.
func NewProtocolViolation(variable string) *SyncError {
	return &SyncError{
		Code:     ErrCodeProtocolViolation,
		Message:  "set for untracked variable",
		Variable: variable,
	}
}

// IsProtocolViolation reports whether err is a protocol violation.
// Uses errors.As to handle wrapped errors.
func IsProtocolViolation(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeProtocolViolation
	}
	return false
}
