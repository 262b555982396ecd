package session

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// TokenCache is a short-lived in-memory map from token value to its
// resolved record, avoiding repeated record store round-trips.
//
// The cache is advisory: a hit must still be checked against the token's
// own expiration by the caller, and a miss or cold cache falls back to the
// record store with identical results. It must never be treated as
// authoritative over the record store.
type TokenCache struct {
	ttl   time.Duration
	cache *ristretto.Cache[string, Token]
}

// NewTokenCache constructs a TokenCache with a default entry TTL and a
// bounded entry count. Safe for concurrent use.
func NewTokenCache(ttl time.Duration, maxEntries int64) (*TokenCache, error) {
	if ttl <= 0 || maxEntries <= 0 {
		return nil, ErrConfig
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, Token]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &TokenCache{ttl: ttl, cache: c}, nil
}

// Get returns the cached token for a value, if present.
func (c *TokenCache) Get(value string) (Token, bool) {
	if c == nil || value == "" {
		return Token{}, false
	}
	return c.cache.Get(value)
}

// Put stores a token under its value with the default TTL.
func (c *TokenCache) Put(t Token) {
	c.PutTTL(t, c.ttl)
}

// PutTTL stores a token with an explicit TTL. The TTL is independent of
// the token's own expiration.
func (c *TokenCache) PutTTL(t Token, ttl time.Duration) {
	if c == nil || t.Value == "" || ttl <= 0 {
		return
	}
	c.cache.SetWithTTL(t.Value, t, 1, ttl)
}

// Invalidate drops a value from the cache. Absent values are a no-op.
func (c *TokenCache) Invalidate(value string) {
	if c == nil || value == "" {
		return
	}
	c.cache.Del(value)
}

// Wait blocks until buffered writes are applied. Used in tests and by
// callers that need read-your-write visibility.
func (c *TokenCache) Wait() {
	if c == nil {
		return
	}
	c.cache.Wait()
}

// Close releases cache resources.
func (c *TokenCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
