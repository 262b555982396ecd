// Package authapi exposes the session engine over HTTP.
//
// The browser cookie jar is the client-side token store: each request
// gets a ClientStore bound to its response writer, so session writes and
// deletes surface as Set-Cookie headers on that exact response.
package authapi
