package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"authgate/cmd/internal/auth/ratelimit"
)

// Service implements the high-level session operations for authgate.
//
// It composes the issuer, the record store, the client store, the token
// cache, and the reconciler into the three user-facing operations: login,
// logout, and validate. The client store is passed per call because it is
// bound to one user agent (one request/response pair over HTTP).
type Service struct {
	cfg Config
	log *slog.Logger

	issuer   *Issuer
	records  RecordStore
	cache    *TokenCache
	limiter  *ratelimit.Limiter
	verifier CredentialVerifier

	reconciler *Reconciler
}

// LoginInput describes a login attempt.
type LoginInput struct {
	TokenName string
	Subject   string
	Proof     string

	// Remember selects the long-lived TTL; TTL overrides both defaults
	// when positive.
	Remember bool
	TTL      time.Duration
}

// LoginResult is the outcome of login or of establishing a session.
// Token is set only on success.
type LoginResult struct {
	Success bool
	Message string
	Token   *Token
}

// LogoutResult is the outcome of logout. Partial is set when only one of
// the two stores could be cleared.
type LogoutResult struct {
	Success bool
	Partial bool
	Message string
}

// NewService constructs a Service. verifier may be nil when the caller
// only establishes sessions for already-authenticated subjects.
func NewService(cfg Config, log *slog.Logger, records RecordStore, cache *TokenCache, limiter *ratelimit.Limiter, verifier CredentialVerifier) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, ErrInvalidArgument
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:        cfg,
		log:        log,
		issuer:     NewIssuer(cfg),
		records:    records,
		cache:      cache,
		limiter:    limiter,
		verifier:   verifier,
		reconciler: NewReconciler(log, records, cache),
	}, nil
}

// Issuer exposes the token issuer for collaborators that mint single-use
// tokens over the same primitive.
func (s *Service) Issuer() *Issuer { return s.issuer }

// Records exposes the record store boundary.
func (s *Service) Records() RecordStore { return s.records }

// Login verifies the credential proof and, on success, establishes a
// session in both stores.
func (s *Service) Login(ctx context.Context, now time.Time, in LoginInput, client ClientStore) (LoginResult, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" || in.Proof == "" || strings.TrimSpace(in.TokenName) == "" {
		return LoginResult{}, ErrInvalidArgument
	}
	if s.verifier == nil {
		return LoginResult{}, errors.New("session: no credential verifier configured")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ok, err := s.verifier.Verify(ctx, subject, in.Proof)
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, err
	}
	if !ok {
		s.log.Warn("session.login.denied", "token_name", in.TokenName)
		loginsTotal.WithLabelValues("denied").Inc()
		return LoginResult{Success: false, Message: "invalid credentials"}, nil
	}

	return s.Establish(ctx, now, in.TokenName, subject, s.loginTTL(in), client)
}

func (s *Service) loginTTL(in LoginInput) time.Duration {
	if in.TTL > 0 {
		return in.TTL
	}
	if in.Remember {
		return s.cfg.RememberTTL
	}
	return s.cfg.SessionTTL
}

// Establish mints a fresh token for an already-authenticated subject and
// writes it to the record store, then the client store.
//
// Ordering matters: the record write must be confirmed before the client
// write is attempted, because the rollback depends on knowing the record
// succeeded. When the client write fails the record is deleted again
// (saga-style compensation) so no orphaned authenticated-looking record
// survives, and the operation reports failure.
func (s *Service) Establish(ctx context.Context, now time.Time, tokenName, subject string, ttl time.Duration, client ClientStore) (LoginResult, error) {
	if client == nil {
		return LoginResult{}, ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tok, err := s.issuer.Issue(now, tokenName, subject, ClassSession, ttl)
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, err
	}

	if err := s.records.Set(ctx, tok); err != nil {
		s.log.Error("session.login.record_write.fail", "token_name", tokenName, "err", err)
		loginsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, err
	}

	if err := client.Set(tok.Name, tok.Value, tok.ExpiresAt); err != nil {
		s.log.Error("session.login.client_write.fail", "token_name", tokenName, "err", err)
		s.rollbackRecord(ctx, tok)
		loginsTotal.WithLabelValues("rollback").Inc()
		return LoginResult{Success: false, Message: "unable to create session"}, nil
	}

	if s.cache != nil {
		s.cache.Put(tok)
	}

	s.log.Info("session.login.success", "token_name", tok.Name, "token_id", tok.ID)
	loginsTotal.WithLabelValues("success").Inc()
	return LoginResult{Success: true, Message: "login successful", Token: &tok}, nil
}

// rollbackRecord deletes the record written earlier in the same login.
// It runs on a detached context: the compensation must complete even when
// the caller is gone.
func (s *Service) rollbackRecord(parent context.Context, tok Token) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.StoreTimeout)
	defer cancel()

	if s.cache != nil {
		s.cache.Invalidate(tok.Value)
	}
	if err := s.records.Remove(ctx, tok.Value); err != nil {
		// The orphaned record will still die at its expiration.
		s.log.Error("session.login.rollback.fail", "token_name", tok.Name, "err", err)
		return
	}
	loginRollbacksTotal.Inc()
}

// Logout purges a session from both stores: client side first, then the
// record side. A client-side failure never blocks the record-side delete.
// Success requires the record-side delete; removing an already-absent
// record still counts as success, so repeated logouts are idempotent.
func (s *Service) Logout(ctx context.Context, now time.Time, tok *Token, client ClientStore) (LogoutResult, error) {
	if tok == nil || strings.TrimSpace(tok.Name) == "" || tok.Value == "" {
		logoutsTotal.WithLabelValues("denied").Inc()
		return LogoutResult{Success: false, Message: "no active session"}, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	clientOK := true
	if client != nil {
		if err := client.Remove(tok.Name); err != nil {
			clientOK = false
			s.log.Error("session.logout.client.fail", "token_name", tok.Name, "err", err)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(tok.Value)
	}

	if err := s.records.Remove(ctx, tok.Value); err != nil {
		s.log.Error("session.logout.record.fail", "token_name", tok.Name, "err", err)
		logoutsTotal.WithLabelValues("partial").Inc()
		if clientOK {
			return LogoutResult{
				Success: false,
				Partial: true,
				Message: "logout partially successful: token cleared from client but not the record store",
			}, nil
		}
		return LogoutResult{Success: false, Message: "logout failed"}, nil
	}

	if !clientOK {
		logoutsTotal.WithLabelValues("partial").Inc()
		return LogoutResult{
			Success: true,
			Partial: true,
			Message: "logout completed: record removed, client-side token could not be cleared",
		}, nil
	}

	s.log.Info("session.logout.success", "token_name", tok.Name)
	logoutsTotal.WithLabelValues("success").Inc()
	return LogoutResult{Success: true, Message: "logout successful"}, nil
}

// Validate reconciles the client store against the record store for one
// token name after a rate-limit check.
//
// recordToken may be supplied by the caller (e.g. resolved upstream); when
// nil it is resolved read-through: cache first, record store on miss. The
// outcome is identical either way.
func (s *Service) Validate(ctx context.Context, now time.Time, tokenName string, recordToken *Token, client ClientStore) (Outcome, error) {
	tokenName = strings.TrimSpace(tokenName)
	if tokenName == "" {
		return Outcome{}, ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var clientValue string
	if client != nil {
		clientValue, _ = client.Get(tokenName)
	}

	identifier := clientValue
	if identifier == "" {
		identifier = tokenName
	}
	if s.limiter != nil && !s.limiter.Allow(identifier) {
		rateLimitedTotal.Inc()
		s.log.Warn("session.validate.rate_limited", "token_name", tokenName)
		return Outcome{}, ErrRateLimited
	}

	if recordToken == nil && clientValue != "" {
		resolved, err := s.resolveRecord(ctx, clientValue)
		if err != nil {
			return Outcome{}, err
		}
		recordToken = resolved
	}

	out, err := s.reconciler.Reconcile(ctx, now, tokenName, recordToken, clientValue, client)
	if err != nil {
		return Outcome{}, err
	}

	validationsTotal.WithLabelValues(string(out.Status())).Inc()
	return out, nil
}

// resolveRecord looks a token value up in the cache, then the record
// store. A store hit repopulates the cache; absence is not an error here,
// it feeds the reconciler as a nil record.
func (s *Service) resolveRecord(ctx context.Context, value string) (*Token, error) {
	if s.cache != nil {
		if tok, ok := s.cache.Get(value); ok {
			cacheEventsTotal.WithLabelValues("hit").Inc()
			return &tok, nil
		}
		cacheEventsTotal.WithLabelValues("miss").Inc()
	}

	tok, err := s.records.Get(ctx, value)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(tok)
	}
	return &tok, nil
}
