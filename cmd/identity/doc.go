// Package identity implements authgate's account directory.
//
// It holds the users the session engine authenticates: lookup by email,
// argon2id credential verification, password replacement for the reset
// flow, and last-login bookkeeping.
//
// This package is intentionally dependency-light and security-first.
package identity
