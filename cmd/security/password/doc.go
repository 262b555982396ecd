// Package password hashes and verifies login credentials for authgate.
//
// It implements Argon2id with a PHC-style encoded string format and includes:
// - Configurable cost parameters (AUTHGATE_ARGON2_* environment variables)
// - Password policy validation (AUTHGATE_PASSWORD_* environment variables)
// - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Verification refuses hashes with parameters that exceed reasonable bounds.
package password
