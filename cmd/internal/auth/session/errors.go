package session

import "errors"

var (
	// ErrInvalidArgument is returned for malformed token names or identifiers.
	// It is local and never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRateLimited is returned when the per-identifier budget is exhausted.
	// Callers surface it as a 429-equivalent, never as an invalid session.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable marks a transient store failure. Reads are retried
	// with backoff before it is surfaced; writes are never retried here.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned when a record does not exist. It is distinct
	// from ErrStoreUnavailable so callers can tell "absent" from "down".
	ErrNotFound = errors.New("record not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
