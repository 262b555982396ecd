package identity

import (
	"context"
	"time"
)

// User is authgate's canonical security principal. Subjects are keyed by
// normalized email.
type User struct {
	ID        string
	Email     string
	EmailNorm string

	DisplayName *string

	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// CreateUserInput describes a user registration request.
type CreateUserInput struct {
	Email       string
	DisplayName *string
	Password    string
	Now         time.Time
}

// Store is the identity persistence boundary.
//
// Credential hashes move through their own methods rather than riding on
// User, so lookups never carry password material around.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// CredentialHash returns the stored PHC hash for a user.
	CredentialHash(ctx context.Context, userID string) (string, error)
	// SetCredentialHash replaces the stored PHC hash for a user.
	SetCredentialHash(ctx context.Context, userID string, phc string) error

	TouchLastLogin(ctx context.Context, userID string, now time.Time) error
}
