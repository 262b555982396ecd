package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRecordStore is an in-memory RecordStore for dev mode and tests.
type MemoryRecordStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryRecordStore constructs an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{tokens: make(map[string]Token)}
}

// Get returns the token stored under value, or ErrNotFound.
func (s *MemoryRecordStore) Get(ctx context.Context, value string) (Token, error) {
	if value == "" {
		return Token{}, ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[value]
	if !ok {
		return Token{}, ErrNotFound
	}
	return t, nil
}

// Set stores a token under its value.
func (s *MemoryRecordStore) Set(ctx context.Context, t Token) error {
	if t.Value == "" {
		return ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Value] = t
	return nil
}

// Remove deletes a token. Removing an absent token is a no-op.
func (s *MemoryRecordStore) Remove(ctx context.Context, value string) error {
	if value == "" {
		return ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, value)
	return nil
}

// Len reports the number of stored tokens (tests).
func (s *MemoryRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// MemoryClientStore is an in-memory ClientStore for dev mode and tests.
// It models a cookie jar for a single user agent.
type MemoryClientStore struct {
	mu     sync.Mutex
	values map[string]memoryClientEntry
}

type memoryClientEntry struct {
	value   string
	expires time.Time
}

// NewMemoryClientStore constructs an empty in-memory client store.
func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{values: make(map[string]memoryClientEntry)}
}

// Get returns the stored value for a token name.
func (s *MemoryClientStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values[name]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Set stores a value under a token name.
func (s *MemoryClientStore) Set(name, value string, expires time.Time) error {
	if name == "" || value == "" {
		return ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = memoryClientEntry{value: value, expires: expires}
	return nil
}

// Remove deletes a value. Removing an absent name is a no-op.
func (s *MemoryClientStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
	return nil
}
