package availsync

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimezone reports an unrecognized IANA timezone
	// identifier. Callers fall back to UTC instead of failing the
	// whole operation.
	ErrInvalidTimezone = errors.New("unrecognized timezone")

	// ErrPermissionDenied reports revoked calendar or store access.
	// The scheduler skips the affected pass and keeps running.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrReadOnlyProvider is returned by providers that only support
	// listing events (e.g. ICS feeds).
	ErrReadOnlyProvider = errors.New("provider is read-only")
)

// ValidationError reports an invalid or overlapping slot. The batch the
// slot belongs to is rejected entirely; nothing is sent to the store.
type ValidationError struct {
	Date   string
	Slot   int    // index of the offending slot
	Other  int    // index of the second slot on overlap, -1 otherwise
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("slot %d: %s", e.Slot, e.Reason)
	}
	return fmt.Sprintf("%s: slot %d: %s", e.Date, e.Slot, e.Reason)
}

// ParseError reports a malformed HH:mm clock value.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid clock value %q, want HH:mm", e.Value)
}

// NetworkError wraps a remote store or provider transport failure. The
// sync pass aborts, local state stays unmodified, and the last sync
// times are not advanced so the next trigger retries the same window.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConflictError reports a server-detected availability or scheduling
// conflict on save. It is surfaced with detail, never auto-resolved.
type ConflictError struct {
	Detail string
	Dates  []string
}

func (e *ConflictError) Error() string {
	if len(e.Dates) == 0 {
		return "conflict: " + e.Detail
	}
	return fmt.Sprintf("conflict on %v: %s", e.Dates, e.Detail)
}
