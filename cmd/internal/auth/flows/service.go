package flows

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"authgate/cmd/internal/auth/session"
	"authgate/cmd/security/token"
)

// Generic user-facing messages. Initiation never discloses whether the
// subject exists; consumption never discloses why a token was refused.
const (
	msgLinkSent    = "if the account exists, a link has been sent"
	msgLinkRefused = "link is invalid or has expired"
)

// Accounts is the slice of the identity layer the flows need.
type Accounts interface {
	SubjectExists(ctx context.Context, subject string) (bool, error)
	SetPassword(ctx context.Context, subject, newPassword string) error
}

// InitiateResult is the outcome of starting a link flow. Message is safe
// to return to the caller verbatim.
type InitiateResult struct {
	Message string
}

// CompleteResetResult is the outcome of finishing a password reset.
type CompleteResetResult struct {
	Success bool
	Message string
}

// Service drives the login-link and reset flows.
//
// singles is the record store holding single-use tokens, keyed by token
// hash. It may be the same backing store as the session records; the
// hash keyspace cannot collide with plain session values.
type Service struct {
	log      *slog.Logger
	sessions *session.Service
	singles  session.RecordStore
	accounts Accounts
	notifier Notifier
}

// NewService constructs a flows Service. notifier may be nil; it falls
// back to NoopNotifier.
func NewService(log *slog.Logger, sessions *session.Service, singles session.RecordStore, accounts Accounts, notifier Notifier) (*Service, error) {
	if sessions == nil || singles == nil || accounts == nil {
		return nil, session.ErrInvalidArgument
	}
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{
		log:      log,
		sessions: sessions,
		singles:  singles,
		accounts: accounts,
		notifier: notifier,
	}, nil
}

// InitiateLoginLink mints a short-lived single-use login token for the
// subject and hands it to the notifier. The response is the same whether
// or not the subject exists.
func (s *Service) InitiateLoginLink(ctx context.Context, now time.Time, subject string) (InitiateResult, error) {
	return s.initiate(ctx, now, subject, session.ClassLoginLink)
}

// InitiateReset mints a single-use password reset token for the subject.
func (s *Service) InitiateReset(ctx context.Context, now time.Time, subject string) (InitiateResult, error) {
	return s.initiate(ctx, now, subject, session.ClassReset)
}

func (s *Service) initiate(ctx context.Context, now time.Time, subject string, class session.Class) (InitiateResult, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return InitiateResult{}, session.ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	exists, err := s.accounts.SubjectExists(ctx, subject)
	if err != nil {
		return InitiateResult{}, err
	}
	if !exists {
		s.log.Info("flows.initiate.unknown_subject", "class", string(class))
		return InitiateResult{Message: msgLinkSent}, nil
	}

	tok, err := s.sessions.Issuer().Issue(now, string(class), subject, class, 0)
	if err != nil {
		return InitiateResult{}, err
	}

	plain := tok.Value
	stored := tok
	stored.Value = token.HashSingleUseTokenHex(plain)
	if err := s.singles.Set(ctx, stored); err != nil {
		return InitiateResult{}, err
	}

	msg := LinkMessage{Subject: subject, Token: plain, ExpiresAt: tok.ExpiresAt}
	var sendErr error
	switch class {
	case session.ClassReset:
		sendErr = s.notifier.SendResetLink(ctx, msg)
	default:
		sendErr = s.notifier.SendLoginLink(ctx, msg)
	}
	if sendErr != nil {
		// The token is unusable if never delivered; drop it again.
		_ = s.singles.Remove(ctx, stored.Value)
		return InitiateResult{}, sendErr
	}

	s.log.Info("flows.initiate.sent",
		"class", string(class),
		"token_fp", token.Fingerprint(plain),
	)
	return InitiateResult{Message: msgLinkSent}, nil
}

// ConsumeLoginLink redeems a login-link token and, on success, establishes
// a full session in both stores under tokenName.
//
// The single-use record is deleted before the session is established.
// When the delete fails the grant is refused, so a token can never be
// redeemed twice.
func (s *Service) ConsumeLoginLink(ctx context.Context, now time.Time, plain, tokenName string, client session.ClientStore) (session.LoginResult, error) {
	tok, ok, err := s.consume(ctx, now, plain, session.ClassLoginLink)
	if err != nil {
		return session.LoginResult{}, err
	}
	if !ok {
		return session.LoginResult{Success: false, Message: msgLinkRefused}, nil
	}
	return s.sessions.Establish(ctx, now, tokenName, tok.Subject, 0, client)
}

// CompleteReset redeems a reset token and replaces the subject's password.
func (s *Service) CompleteReset(ctx context.Context, now time.Time, plain, newPassword string) (CompleteResetResult, error) {
	if newPassword == "" {
		return CompleteResetResult{}, session.ErrInvalidArgument
	}

	tok, ok, err := s.consume(ctx, now, plain, session.ClassReset)
	if err != nil {
		return CompleteResetResult{}, err
	}
	if !ok {
		return CompleteResetResult{Success: false, Message: msgLinkRefused}, nil
	}

	if err := s.accounts.SetPassword(ctx, tok.Subject, newPassword); err != nil {
		return CompleteResetResult{}, err
	}

	s.log.Info("flows.reset.completed", "token_fp", token.Fingerprint(plain))
	return CompleteResetResult{Success: true, Message: "password updated"}, nil
}

// consume looks a single-use token up by hash, checks class and expiry,
// and deletes the record. ok is false for any refusal; err is reserved
// for store failures.
func (s *Service) consume(ctx context.Context, now time.Time, plain string, class session.Class) (session.Token, bool, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return session.Token{}, false, session.ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	hash := token.HashSingleUseTokenHex(plain)
	tok, err := s.singles.Get(ctx, hash)
	if errors.Is(err, session.ErrNotFound) {
		s.log.Warn("flows.consume.unknown", "class", string(class), "token_fp", token.Fingerprint(plain))
		return session.Token{}, false, nil
	}
	if err != nil {
		return session.Token{}, false, err
	}

	if tok.Class != class {
		s.log.Warn("flows.consume.class_mismatch", "want", string(class), "got", string(tok.Class))
		return session.Token{}, false, nil
	}
	if tok.Expired(now) {
		_ = s.singles.Remove(ctx, hash)
		s.log.Warn("flows.consume.expired", "class", string(class), "token_fp", token.Fingerprint(plain))
		return session.Token{}, false, nil
	}

	// Delete first. If the delete cannot be confirmed, refuse the grant.
	if err := s.singles.Remove(ctx, hash); err != nil {
		return session.Token{}, false, err
	}

	s.log.Info("flows.consume.redeemed", "class", string(class), "token_fp", token.Fingerprint(plain))
	return tok, true, nil
}
