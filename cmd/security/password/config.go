package password

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB  uint32 `env:"AUTHGATE_ARGON2_MEMORY_KIB" envDefault:"65536"`
	Iterations uint32 `env:"AUTHGATE_ARGON2_ITERATIONS" envDefault:"3"`
	// Parallelism 0 means derive from the host CPU count, clamped to [1..4].
	Parallelism uint8  `env:"AUTHGATE_ARGON2_PARALLELISM" envDefault:"0"`
	SaltLength  uint32 `env:"AUTHGATE_ARGON2_SALT_LEN" envDefault:"16"`
	KeyLength   uint32 `env:"AUTHGATE_ARGON2_KEY_LEN" envDefault:"32"`
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int `env:"AUTHGATE_PASSWORD_MIN_LEN" envDefault:"12"`
	MaxLength int `env:"AUTHGATE_PASSWORD_MAX_LEN" envDefault:"256"`
	// RejectVeryWeak enables a minimal weak-pattern rejection on top of
	// the length policy.
	RejectVeryWeak bool `env:"AUTHGATE_PASSWORD_REJECT_VERY_WEAK" envDefault:"false"`
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns a conservative baseline for interactive logins.
func DefaultConfig() Config {
	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: defaultParallelism(),
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      12,
			MaxLength:      256,
			RejectVeryWeak: false,
		},
	}
}

// defaultParallelism derives Argon2id lanes from the host CPU count,
// clamped to [1..4] so memory-bandwidth use stays predictable under
// container CPU limits.
func defaultParallelism() uint8 {
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}
	return uint8(threads) // #nosec G115 -- clamped to [1..4] above; safe conversion.
}

// FromEnv loads Config from AUTHGATE_PASSWORD_* and AUTHGATE_ARGON2_*
// environment variables, falling back to the DefaultConfig values.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Params.Parallelism == 0 {
		cfg.Params.Parallelism = defaultParallelism()
	}
	if err := cfg.checkBounds(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// checkBounds rejects configurations that would be trivially weak or let a
// single hashing call consume pathological amounts of memory.
func (c Config) checkBounds() error {
	if c.Policy.MinLength < 1 || c.Policy.MinLength > 1024 {
		return fmt.Errorf("AUTHGATE_PASSWORD_MIN_LEN: out of range [1..1024]")
	}
	if c.Policy.MaxLength < 1 || c.Policy.MaxLength > 4096 {
		return fmt.Errorf("AUTHGATE_PASSWORD_MAX_LEN: out of range [1..4096]")
	}
	if c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			c.Policy.MinLength,
			c.Policy.MaxLength,
		)
	}
	if c.Params.MemoryKiB < 8*1024 || c.Params.MemoryKiB > 1024*1024 {
		return fmt.Errorf("AUTHGATE_ARGON2_MEMORY_KIB: out of range [8192..1048576]")
	}
	if c.Params.Iterations < 1 || c.Params.Iterations > 20 {
		return fmt.Errorf("AUTHGATE_ARGON2_ITERATIONS: out of range [1..20]")
	}
	if c.Params.Parallelism > 64 {
		return fmt.Errorf("AUTHGATE_ARGON2_PARALLELISM: out of range [1..64]")
	}
	if c.Params.SaltLength < 8 || c.Params.SaltLength > 64 {
		return fmt.Errorf("AUTHGATE_ARGON2_SALT_LEN: out of range [8..64]")
	}
	if c.Params.KeyLength < 16 || c.Params.KeyLength > 64 {
		return fmt.Errorf("AUTHGATE_ARGON2_KEY_LEN: out of range [16..64]")
	}
	return nil
}
