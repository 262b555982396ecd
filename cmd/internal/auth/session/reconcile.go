package session

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Status classifies the agreement between the client-side and record-side
// views of one token name.
type Status string

const (
	// StatusValid means both sides hold the same, unexpired token value.
	StatusValid Status = "valid"
	// StatusExpired means the record-side token's expiration has passed.
	StatusExpired Status = "expired"
	// StatusInvalid means the client presented a value the server never
	// issued or already discarded.
	StatusInvalid Status = "invalid"
	// StatusOnlyRecord means a record exists but the client lost its copy
	// (e.g. cleared cookies).
	StatusOnlyRecord Status = "onlyRecord"
	// StatusEmpty means neither side holds a token.
	StatusEmpty Status = "empty"
)

// SideView is one store's view of a token name after reconciliation.
type SideView struct {
	TokenName  string
	TokenValue string
	Subject    string
	ExpiresAt  time.Time // zero when the side carries no expiration
	Status     Status
}

// Outcome is the result of reconciling the client store against the record
// store for one token name. The two sides are carried separately because
// they can disagree; the derivation sets both to the same status.
type Outcome struct {
	Client SideView
	Record SideView

	// Identifier maps the token name to the client-presented value for
	// downstream correlation and logging.
	Identifier map[string]string
}

// Status returns the reconciled status.
func (o Outcome) Status() Status { return o.Record.Status }

// Authenticated reports whether the session is usable. The value equality
// is re-checked here even though StatusValid implies it.
func (o Outcome) Authenticated() bool {
	return o.Status() == StatusValid &&
		o.Client.TokenValue != "" &&
		o.Client.TokenValue == o.Record.TokenValue
}

// Reconciler derives a validation status from the token found in the
// client store and the record found in the record store (or cache), and
// triggers cleanup when they disagree.
type Reconciler struct {
	log     *slog.Logger
	records RecordStore
	cache   *TokenCache
}

// NewReconciler constructs a Reconciler. cache may be nil.
func NewReconciler(log *slog.Logger, records RecordStore, cache *TokenCache) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{log: log, records: records, cache: cache}
}

// Reconcile compares the client-presented value against the record-side
// token and derives the status, first match wins:
//
//  1. record expired                 -> StatusExpired
//  2. client value and no record     -> StatusInvalid (+ best-effort cleanup)
//  3. values equal                   -> StatusValid
//  4. record only                    -> StatusOnlyRecord
//  5. anything else                  -> StatusEmpty
//
// A mismatch with both sides present (client holds one value, the record
// another) falls through to StatusEmpty: the client value does not name
// the record, so there is nothing to clean, and the session is simply
// not usable. It is never StatusValid.
//
// The decision logic is pure: it produces identical results whether the
// record came from the cache or the store. Cleanup deletes go against both
// stores and are advisory; failures are logged, never raised. client may
// be nil when no client-side handle is available.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time, tokenName string, recordToken *Token, clientValue string, client ClientStore) (Outcome, error) {
	tokenName = strings.TrimSpace(tokenName)
	if tokenName == "" {
		return Outcome{}, ErrInvalidArgument
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	out := Outcome{
		Client: SideView{TokenName: tokenName, TokenValue: clientValue, Status: StatusEmpty},
		Record: SideView{TokenName: tokenName, Status: StatusEmpty},
		Identifier: map[string]string{
			tokenName: clientValue,
		},
	}
	if recordToken != nil {
		out.Record.TokenValue = recordToken.Value
		out.Record.Subject = recordToken.Subject
		out.Record.ExpiresAt = recordToken.ExpiresAt
		out.Client.Subject = recordToken.Subject
	}

	var status Status
	switch {
	case recordToken != nil && recordToken.Expired(now):
		status = StatusExpired
	case clientValue != "" && recordToken == nil:
		status = StatusInvalid
	case clientValue != "" && recordToken != nil && recordToken.Value == clientValue:
		status = StatusValid
	case clientValue == "" && recordToken != nil:
		status = StatusOnlyRecord
	default:
		status = StatusEmpty
	}

	out.Client.Status = status
	out.Record.Status = status

	switch status {
	case StatusValid:
		r.log.Debug("session.reconcile.valid", "token_name", tokenName)
	case StatusExpired:
		r.log.Info("session.reconcile.expired", "token_name", tokenName)
	case StatusOnlyRecord:
		// Denial: the client lost its copy; the record alone never grants.
		r.log.Info("session.reconcile.only_record", "token_name", tokenName)
	case StatusInvalid:
		r.log.Warn("session.reconcile.invalid", "token_name", tokenName)
		r.cleanup(ctx, tokenName, clientValue, client)
	case StatusEmpty:
		r.log.Debug("session.reconcile.empty", "token_name", tokenName)
	}

	return out, nil
}

// cleanup purges an invalid token from the record store, the cache, and
// the client store. It runs on a detached context so an abandoned validate
// call does not leave the session half-cleaned.
func (r *Reconciler) cleanup(parent context.Context, tokenName, clientValue string, client ClientStore) {
	if clientValue == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 5*time.Second)
	defer cancel()

	if r.cache != nil {
		r.cache.Invalidate(clientValue)
	}
	if r.records != nil {
		if err := r.records.Remove(ctx, clientValue); err != nil {
			r.log.Error("session.cleanup.record.fail", "token_name", tokenName, "err", err)
		}
	}
	if client != nil {
		if err := client.Remove(tokenName); err != nil {
			r.log.Error("session.cleanup.client.fail", "token_name", tokenName, "err", err)
		}
	}
}
