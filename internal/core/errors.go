package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotHydrated is returned when a store value is written before its
	// first read cycle finished. Persisting before hydration would clobber
	// real persisted state with defaults.
	ErrNotHydrated = errors.New("store value not hydrated")

	// ErrCanceled marks a chat round-trip aborted by the user. It is
	// deliberately distinct from request failures: no error message is
	// appended to the conversation for it.
	ErrCanceled = errors.New("request canceled")

	// ErrBusy rejects a send while another request is outstanding.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyMessage rejects a blank send.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNotReady rejects a send before a provider credential is configured.
	ErrNotReady = errors.New("settings incomplete: no provider credential configured")
)

// StorageError reports a failed operation on the key-value store. Reads
// recover locally by falling back to defaults; write and clear failures
// propagate to the caller.
type StorageError struct {
	Op  string // "read", "write" or "clear"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports a structurally invalid record or settings field.
// It is raised synchronously at the point of validation, never coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequestError reports a failed chat backend round-trip. StatusCode is zero
// when the failure happened before any response arrived (transport error,
// client-side timeout).
type RequestError struct {
	Message    string
	StatusCode int
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat request failed (http %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("chat request failed: %s", e.Message)
}
