package session

import "time"

// Class identifies how a token may be used.
type Class string

const (
	// ClassSession is a long-lived bearer session token.
	ClassSession Class = "session"
	// ClassLoginLink is a single-use passwordless login token.
	ClassLoginLink Class = "login_link"
	// ClassReset is a single-use password-reset token.
	ClassReset Class = "reset"
)

// Token identifies one authentication session.
//
// Name is a logical channel (e.g. "loggedIn") shared across users; Value is
// the opaque bearer credential, unique per active session. A token found
// valid must have Value present and identical in both the client store and
// the record store, with ExpiresAt strictly in the future.
type Token struct {
	ID      string // record id (ULID)
	Name    string
	Value   string
	Subject string
	Class   Class

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's expiration is at or before now.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// SingleUse reports whether the token must be deleted upon first
// successful consumption.
func (t Token) SingleUse() bool {
	return t.Class == ClassLoginLink || t.Class == ClassReset
}
