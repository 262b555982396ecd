package authapi

import (
	"net/http"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config controls auth API behavior and cookie security defaults.
type Config struct {
	// CookieName is the logical token name shared with the record store.
	CookieName string `env:"AUTHGATE_AUTH_COOKIE_NAME" envDefault:"loggedIn"`

	CookiePath   string `env:"AUTHGATE_AUTH_COOKIE_PATH" envDefault:"/"`
	CookieDomain string `env:"AUTHGATE_AUTH_COOKIE_DOMAIN"`
	CookieSecure bool   `env:"AUTHGATE_AUTH_COOKIE_SECURE" envDefault:"true"`

	// CookieSameSite is one of "lax", "strict", "none".
	CookieSameSite string `env:"AUTHGATE_AUTH_COOKIE_SAMESITE" envDefault:"lax"`

	TrustProxy   bool  `env:"AUTHGATE_AUTH_TRUST_PROXY" envDefault:"false"`
	MaxBodyBytes int64 `env:"AUTHGATE_AUTH_MAX_BODY_BYTES" envDefault:"1048576"`
}

// DefaultConfig returns the reference API configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:     "loggedIn",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: "lax",
		MaxBodyBytes:   1 << 20,
	}
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = "loggedIn"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg, nil
}

// sameSite maps the configured mode to http.SameSite; unknown values fall
// back to Lax.
func (c Config) sameSite() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(c.CookieSameSite)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
