package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecordStore implements RecordStore using PostgreSQL
// (authgate.session_tokens).
//
// Reads are retried with exponential backoff on transient failures and
// capped by the configured store timeout. Writes run once.
type PostgresRecordStore struct {
	pool    *pgxpool.Pool
	retry   RetryPolicy
	timeout time.Duration
}

// NewPostgresRecordStore creates a Postgres-backed record store.
func NewPostgresRecordStore(pool *pgxpool.Pool, cfg Config) *PostgresRecordStore {
	return &PostgresRecordStore{
		pool:    pool,
		retry:   cfg.retryPolicy(),
		timeout: cfg.StoreTimeout,
	}
}

// Get loads a token record by value.
func (s *PostgresRecordStore) Get(ctx context.Context, value string) (Token, error) {
	if value == "" {
		return Token{}, ErrInvalidArgument
	}

	return retryRead(ctx, s.retry, func() (Token, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var t Token
		err := s.pool.QueryRow(opCtx, `
			SELECT id, token_name, token_value, subject, class, issued_at, expires_at
			FROM authgate.session_tokens
			WHERE token_value = $1
		`, value).Scan(
			&t.ID,
			&t.Name,
			&t.Value,
			&t.Subject,
			&t.Class,
			&t.IssuedAt,
			&t.ExpiresAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		if err != nil {
			return Token{}, errors.Join(ErrStoreUnavailable, err)
		}
		return t, nil
	})
}

// Set inserts or replaces a token record. Not retried.
func (s *PostgresRecordStore) Set(ctx context.Context, t Token) error {
	if t.Value == "" {
		return ErrInvalidArgument
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(opCtx, `
		INSERT INTO authgate.session_tokens (
			id, token_name, token_value, subject, class, issued_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token_value) DO UPDATE SET
			token_name = EXCLUDED.token_name,
			subject    = EXCLUDED.subject,
			class      = EXCLUDED.class,
			issued_at  = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at
	`, t.ID, t.Name, t.Value, t.Subject, string(t.Class), t.IssuedAt, t.ExpiresAt)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes a token record (idempotent).
func (s *PostgresRecordStore) Remove(ctx context.Context, value string) error {
	if value == "" {
		return ErrInvalidArgument
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(opCtx, `
		DELETE FROM authgate.session_tokens
		WHERE token_value = $1
	`, value)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
