package identity

import (
	"context"
	"testing"
	"time"
)

func newTestDirectory(t *testing.T) (*Directory, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	dir, err := NewDirectory(store, nil)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return dir, store
}

func mustCreateUser(t *testing.T, store *MemoryStore, email, pw string) User {
	t.Helper()

	u, err := store.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: pw,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func TestVerifyCorrectPassword(t *testing.T) {
	dir, store := newTestDirectory(t)
	mustCreateUser(t, store, "kaveh@example.com", "correct horse battery")

	ok, err := dir.Verify(context.Background(), "kaveh@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to pass")
	}
}

func TestVerifyWrongPasswordAndUnknownSubjectLookAlike(t *testing.T) {
	dir, store := newTestDirectory(t)
	mustCreateUser(t, store, "kaveh@example.com", "correct horse battery")

	wrong, err := dir.Verify(context.Background(), "kaveh@example.com", "nope")
	if err != nil {
		t.Fatalf("Verify wrong password: %v", err)
	}
	unknown, err := dir.Verify(context.Background(), "ghost@example.com", "nope")
	if err != nil {
		t.Fatalf("Verify unknown subject: %v", err)
	}
	if wrong || unknown {
		t.Fatal("both cases must be a plain false")
	}
}

func TestVerifyNormalizesEmail(t *testing.T) {
	dir, store := newTestDirectory(t)
	mustCreateUser(t, store, "Kaveh@Example.com", "correct horse battery")

	ok, err := dir.Verify(context.Background(), "  kaveh@example.com ", "correct horse battery")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("lookup must be case-insensitive and trimmed")
	}
}

func TestVerifyTouchesLastLogin(t *testing.T) {
	dir, store := newTestDirectory(t)
	mustCreateUser(t, store, "kaveh@example.com", "correct horse battery")

	if _, err := dir.Verify(context.Background(), "kaveh@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	u, err := store.GetUserByEmail(context.Background(), "kaveh@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.LastLoginAt == nil {
		t.Fatal("LastLoginAt not set after successful verification")
	}
}

func TestSetPasswordReplacesCredential(t *testing.T) {
	dir, store := newTestDirectory(t)
	mustCreateUser(t, store, "kaveh@example.com", "old password 123")

	if err := dir.SetPassword(context.Background(), "kaveh@example.com", "new password 456"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	old, _ := dir.Verify(context.Background(), "kaveh@example.com", "old password 123")
	if old {
		t.Fatal("old password must stop working")
	}
	neu, err := dir.Verify(context.Background(), "kaveh@example.com", "new password 456")
	if err != nil {
		t.Fatalf("Verify new password: %v", err)
	}
	if !neu {
		t.Fatal("new password must work")
	}
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	_, store := newTestDirectory(t)
	mustCreateUser(t, store, "kaveh@example.com", "correct horse battery")

	_, err := store.CreateUser(context.Background(), CreateUserInput{
		Email:    "KAVEH@example.com",
		Password: "another password",
	})
	if !IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
}
