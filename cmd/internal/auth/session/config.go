package session

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines all runtime configuration for the session engine.
//
// It controls token TTLs per class, cache behavior, the rate-limit budget
// for validation lookups, and the read-retry policy for the record store.
// Values are environment-driven so deployments can tune them without code
// changes.
type Config struct {
	// SessionTTL is the default lifetime of a bearer session token.
	SessionTTL time.Duration `env:"AUTHGATE_SESSION_TTL" envDefault:"12h"`

	// RememberTTL is the lifetime used when the caller asks for a
	// long-lived ("remember me") session.
	RememberTTL time.Duration `env:"AUTHGATE_SESSION_TTL_REMEMBER" envDefault:"168h"`

	// LoginLinkTTL and ResetTTL bound the single-use token classes.
	LoginLinkTTL time.Duration `env:"AUTHGATE_LOGIN_LINK_TTL" envDefault:"15m"`
	ResetTTL     time.Duration `env:"AUTHGATE_RESET_TTL" envDefault:"1h"`

	// TokenBytes is the number of random bytes in a token value.
	// 16 bytes (128 bits) is the floor; 32 is the default.
	TokenBytes int `env:"AUTHGATE_TOKEN_BYTES" envDefault:"32"`

	// CacheTTL is the advisory lifetime of a cache entry. It is independent
	// of token expiration; the cache never short-circuits expiry logic.
	CacheTTL        time.Duration `env:"AUTHGATE_CACHE_TTL" envDefault:"10m"`
	CacheMaxEntries int64         `env:"AUTHGATE_CACHE_MAX_ENTRIES" envDefault:"65536"`

	// Rate limit for validation lookups: RateLimitPoints consumed per
	// identifier, refilled over RateLimitWindow.
	RateLimitPoints int           `env:"AUTHGATE_RATE_LIMIT_POINTS" envDefault:"10"`
	RateLimitWindow time.Duration `env:"AUTHGATE_RATE_LIMIT_WINDOW" envDefault:"1s"`

	// Record store read-retry policy (reads only; writes are never
	// retried because an ambiguous failure could double-issue tokens).
	RetryBaseDelay   time.Duration `env:"AUTHGATE_STORE_RETRY_BASE" envDefault:"1s"`
	RetryFactor      float64       `env:"AUTHGATE_STORE_RETRY_FACTOR" envDefault:"2"`
	RetryMaxAttempts int           `env:"AUTHGATE_STORE_RETRY_ATTEMPTS" envDefault:"3"`

	// StoreTimeout caps every record store round-trip.
	StoreTimeout time.Duration `env:"AUTHGATE_STORE_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		SessionTTL:       12 * time.Hour,
		RememberTTL:      7 * 24 * time.Hour,
		LoginLinkTTL:     15 * time.Minute,
		ResetTTL:         time.Hour,
		TokenBytes:       32,
		CacheTTL:         10 * time.Minute,
		CacheMaxEntries:  65536,
		RateLimitPoints:  10,
		RateLimitWindow:  time.Second,
		RetryBaseDelay:   time.Second,
		RetryFactor:      2,
		RetryMaxAttempts: 3,
		StoreTimeout:     5 * time.Second,
	}
}

// LoadConfigFromEnv loads session configuration from AUTHGATE_* environment
// variables and validates the invariants. Returns ErrConfig when invalid.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, ErrConfig
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 || c.LoginLinkTTL <= 0 || c.ResetTTL <= 0 {
		return ErrConfig
	}
	if c.RememberTTL < c.SessionTTL {
		return ErrConfig
	}
	// 128-bit entropy floor for bearer credentials.
	if c.TokenBytes < 16 || c.TokenBytes > 64 {
		return ErrConfig
	}
	if c.CacheTTL <= 0 || c.CacheMaxEntries <= 0 {
		return ErrConfig
	}
	if c.RateLimitPoints <= 0 || c.RateLimitWindow <= 0 {
		return ErrConfig
	}
	if c.RetryBaseDelay <= 0 || c.RetryFactor < 1 || c.RetryMaxAttempts < 1 {
		return ErrConfig
	}
	if c.StoreTimeout <= 0 {
		return ErrConfig
	}
	return nil
}

// ttlFor resolves the default TTL for a token class.
func (c Config) ttlFor(class Class) time.Duration {
	switch class {
	case ClassLoginLink:
		return c.LoginLinkTTL
	case ClassReset:
		return c.ResetTTL
	default:
		return c.SessionTTL
	}
}
