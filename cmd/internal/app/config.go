package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string `env:"AUTHGATE_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel  string `env:"AUTHGATE_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"AUTHGATE_LOG_PRETTY" envDefault:"false"`

	ReadHeaderTimeout time.Duration `env:"AUTHGATE_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"AUTHGATE_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"AUTHGATE_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"AUTHGATE_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"AUTHGATE_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"AUTHGATE_DATABASE_URL"`
	DBMaxConns  int32  `env:"AUTHGATE_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"AUTHGATE_DB_MIN_CONNS" envDefault:"0"`

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool `env:"AUTHGATE_READINESS_REQUIRE_DB" envDefault:"false"`

	// Security policy:
	// If true, AUTHGATE_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// single-use token hashing must be HMAC-based.
	RequireTokenHMAC bool `env:"AUTHGATE_REQUIRE_TOKEN_HMAC" envDefault:"false"`

	// CORSAllowedOrigins lists exact origins allowed to call the API with
	// credentials. Empty disables the CORS layer entirely.
	CORSAllowedOrigins []string `env:"AUTHGATE_CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	// Clamp to keep the server bootable with odd inputs.
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = 1 << 20
	}
	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}
	if cfg.DBMinConns < 0 {
		cfg.DBMinConns = 0
	}
	return cfg, nil
}
