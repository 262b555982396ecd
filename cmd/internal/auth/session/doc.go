// Package session implements authgate's session token lifecycle engine.
//
// A session token is issued at login and persisted in two independent
// places: a server-side record store and a client-side store (a cookie or
// equivalent). On every request the two views are reconciled to decide
// whether the session is valid, stale, partially present, or tampered.
//
// The package contains the token issuer, the reconciler, a read-through
// token cache, the record/client store boundaries, and the lifecycle
// facade that composes them for login, logout, and validate.
package session
