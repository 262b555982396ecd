package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRecordStoreRoundTrip(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()
	now := time.Now().UTC()

	tok := testToken("loggedIn", "abc", "kaveh@example.com", now, time.Hour)
	if err := s.Set(ctx, tok); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subject != tok.Subject || !got.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Fatalf("got %+v", got)
	}

	if err := s.Remove(ctx, "abc"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRecordStoreGetAbsent(t *testing.T) {
	s := NewMemoryRecordStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRecordStoreRemoveIsIdempotent(t *testing.T) {
	s := NewMemoryRecordStore()
	if err := s.Remove(context.Background(), "nope"); err != nil {
		t.Fatalf("Remove of absent value: %v", err)
	}
}

func TestMemoryRecordStoreRejectsEmptyValue(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Get: err = %v", err)
	}
	if err := s.Set(ctx, Token{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Set: err = %v", err)
	}
	if err := s.Remove(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Remove: err = %v", err)
	}
}

func TestMemoryClientStoreRoundTrip(t *testing.T) {
	s := NewMemoryClientStore()
	now := time.Now().UTC()

	if err := s.Set("loggedIn", "abc", now.Add(time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := s.Get("loggedIn")
	if !ok || got != "abc" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	if err := s.Remove("loggedIn"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.Get("loggedIn"); ok {
		t.Fatal("value must be gone")
	}
	if err := s.Remove("loggedIn"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}
