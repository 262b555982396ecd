package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for dev mode and tests.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]User
	byEmail map[string]string // email_norm -> user id
	creds   map[string]string // user id -> PHC hash
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		creds:   make(map[string]string),
	}
}

// CreateUser registers a user and their credential hash.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	phc, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	norm := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[norm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:          uuid.NewString(),
		Email:       email,
		EmailNorm:   norm,
		DisplayName: in.DisplayName,
		CreatedAt:   now,
	}
	s.byID[u.ID] = u
	s.byEmail[norm] = u.ID
	s.creds[u.ID] = phc
	return u, nil
}

// GetUserByEmail looks a user up by normalized email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return s.byID[id], nil
}

// CredentialHash returns the stored PHC hash for a user.
func (s *MemoryStore) CredentialHash(ctx context.Context, userID string) (string, error) {
	const op = "identity.CredentialHash"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phc, ok := s.creds[userID]
	if !ok {
		return "", OpError{Op: op, Kind: ErrNotFound}
	}
	return phc, nil
}

// SetCredentialHash replaces the stored PHC hash for a user.
func (s *MemoryStore) SetCredentialHash(ctx context.Context, userID string, phc string) error {
	const op = "identity.SetCredentialHash"

	if phc == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty hash"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[userID]; !ok {
		return OpError{Op: op, Kind: ErrNotFound}
	}
	s.creds[userID] = phc
	return nil
}

// TouchLastLogin records a successful authentication time.
func (s *MemoryStore) TouchLastLogin(ctx context.Context, userID string, now time.Time) error {
	const op = "identity.TouchLastLogin"

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return OpError{Op: op, Kind: ErrNotFound}
	}
	t := now
	u.LastLoginAt = &t
	s.byID[userID] = u
	return nil
}
