package authapi

import (
	"net/http"
	"strings"
	"time"

	"authgate/cmd/internal/auth/session"
)

// CookieClientStore adapts one HTTP request/response pair to
// session.ClientStore: reads come from the request's Cookie header,
// writes and deletes become Set-Cookie headers on the response.
//
// A store is valid for exactly one request; never reuse it across
// requests.
type CookieClientStore struct {
	w   http.ResponseWriter
	r   *http.Request
	cfg Config
}

// NewCookieClientStore binds a client store to a request/response pair.
func NewCookieClientStore(w http.ResponseWriter, r *http.Request, cfg Config) *CookieClientStore {
	return &CookieClientStore{w: w, r: r, cfg: cfg}
}

// Get returns the cookie value for a token name.
func (s *CookieClientStore) Get(name string) (string, bool) {
	if s == nil || s.r == nil {
		return "", false
	}
	c, err := s.r.Cookie(name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

// Set writes a session cookie. HttpOnly always: the token is a bearer
// credential and must be invisible to scripts.
func (s *CookieClientStore) Set(name, value string, expires time.Time) error {
	if s == nil || s.w == nil {
		return session.ErrInvalidArgument
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.cfg.CookiePath,
		Domain:   s.cfg.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.cfg.sameSite(),
	})
	return nil
}

// Remove expires the cookie on the response.
func (s *CookieClientStore) Remove(name string) error {
	if s == nil || s.w == nil || strings.TrimSpace(name) == "" {
		return session.ErrInvalidArgument
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     s.cfg.CookiePath,
		Domain:   s.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.cfg.sameSite(),
	})
	return nil
}
