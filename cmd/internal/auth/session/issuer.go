package session

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Issuer mints new opaque session tokens.
//
// Token values are CSPRNG-sourced random bytes, URL-safe base64 encoded.
// UUIDs and short hex strings are deliberately not used as bearer secrets.
type Issuer struct {
	cfg Config
}

// NewIssuer constructs an Issuer.
func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg}
}

// Issue creates a new token for a name/subject pair.
//
// ttl <= 0 selects the class default (12h sessions, 15m login links,
// 1h reset tokens). The token value is generated fresh on every call;
// expired or invalidated tokens are never resurrected.
func (i *Issuer) Issue(now time.Time, name, subject string, class Class, ttl time.Duration) (Token, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	if name == "" || subject == "" {
		return Token{}, ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if ttl <= 0 {
		ttl = i.cfg.ttlFor(class)
	}

	value, err := NewOpaqueValue(i.cfg.TokenBytes)
	if err != nil {
		return Token{}, err
	}

	id, err := newULID(now)
	if err != nil {
		return Token{}, err
	}

	return Token{
		ID:        id,
		Name:      name,
		Value:     value,
		Subject:   subject,
		Class:     class,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// NewOpaqueValue returns a cryptographically random, URL-safe token value.
// nBytes below the 128-bit floor is bumped to 16.
func NewOpaqueValue(nBytes int) (string, error) {
	if nBytes < 16 {
		nBytes = 16
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	// URL-safe, no padding.
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
