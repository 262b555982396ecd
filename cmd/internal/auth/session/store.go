package session

import (
	"context"
	"time"
)

// RecordStore is the server-side persistence boundary for issued tokens.
//
// Records are keyed by token value. Implementations must return ErrNotFound
// for absent records and wrap transport failures with ErrStoreUnavailable
// so the engine can distinguish "absent" from "down". Remove is idempotent:
// deleting an absent record is a no-op, not an error.
type RecordStore interface {
	Get(ctx context.Context, value string) (Token, error)
	Set(ctx context.Context, t Token) error
	Remove(ctx context.Context, value string) error
}

// ClientStore abstracts the client-persisted side of a session (a cookie
// or any equivalent key/value holder on the user agent).
//
// Get reports absence via the bool; client-side reads cannot distinguish
// "never set" from "cleared". Set and Remove may fail (e.g. headers
// already written), which the facade treats per the rollback and
// best-effort rules.
type ClientStore interface {
	Get(name string) (string, bool)
	Set(name, value string, expires time.Time) error
	Remove(name string) error
}

// CredentialVerifier is the external collaborator that checks a login
// proof (password hash comparison, one-time code match) for a subject.
type CredentialVerifier interface {
	Verify(ctx context.Context, subject, proof string) (bool, error)
}
