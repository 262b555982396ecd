// Package flows implements the single-use token flows layered on top of
// the session engine: email login links and password resets.
//
// Single-use tokens are stored server-side keyed by their hash, never by
// the plain value. Consumption deletes the record before any grant is
// made, so a token observed twice can succeed at most once. Initiation
// responses are identical whether or not the subject exists, to avoid
// account enumeration.
package flows
