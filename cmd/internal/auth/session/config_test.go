package session

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.RateLimitPoints != 10 || cfg.RateLimitWindow != time.Second {
		t.Fatalf("rate limit = %d/%v", cfg.RateLimitPoints, cfg.RateLimitWindow)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryBaseDelay != time.Second {
		t.Fatalf("retry = %d attempts, base %v", cfg.RetryMaxAttempts, cfg.RetryBaseDelay)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_SESSION_TTL", "90m")
	t.Setenv("AUTHGATE_TOKEN_BYTES", "24")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.TokenBytes != 24 {
		t.Fatalf("TokenBytes = %d", cfg.TokenBytes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.SessionTTL = 0 },
		func(c *Config) { c.RememberTTL = c.SessionTTL - time.Hour },
		func(c *Config) { c.TokenBytes = 8 },
		func(c *Config) { c.TokenBytes = 128 },
		func(c *Config) { c.CacheTTL = 0 },
		func(c *Config) { c.CacheMaxEntries = 0 },
		func(c *Config) { c.RateLimitPoints = 0 },
		func(c *Config) { c.RateLimitWindow = 0 },
		func(c *Config) { c.RetryMaxAttempts = 0 },
		func(c *Config) { c.RetryFactor = 0.5 },
		func(c *Config) { c.StoreTimeout = 0 },
	}

	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Fatalf("mutation %d: err = %v, want ErrConfig", i, err)
		}
	}
}

func TestLoadConfigFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("AUTHGATE_SESSION_TTL", "not-a-duration")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestTTLForClass(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ttlFor(ClassSession) != 12*time.Hour {
		t.Fatal("session ttl")
	}
	if cfg.ttlFor(ClassLoginLink) != 15*time.Minute {
		t.Fatal("login link ttl")
	}
	if cfg.ttlFor(ClassReset) != time.Hour {
		t.Fatal("reset ttl")
	}
}
