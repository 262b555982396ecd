package identity

import (
	"context"
	"log/slog"
	"time"
)

// Directory adapts a Store to the interfaces the auth layers consume:
// credential verification for login and subject lookup / password
// replacement for the link flows.
type Directory struct {
	store Store
	log   *slog.Logger
}

// NewDirectory wraps a Store.
func NewDirectory(store Store, log *slog.Logger) (*Directory, error) {
	if store == nil {
		return nil, OpError{Op: "identity.NewDirectory", Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Directory{store: store, log: log}, nil
}

// Verify checks a subject/proof pair against the stored credential hash.
// Unknown subjects and wrong proofs are both a plain false: callers must
// not be able to tell them apart.
func (d *Directory) Verify(ctx context.Context, subject, proof string) (bool, error) {
	u, err := d.store.GetUserByEmail(ctx, subject)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	phc, err := d.store.CredentialHash(ctx, u.ID)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := VerifyPassword(proof, phc)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := d.store.TouchLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		// Bookkeeping only; the authentication itself stands.
		d.log.Warn("identity.touch_last_login.fail", "err", err)
	}
	return true, nil
}

// SubjectExists reports whether a subject is registered.
func (d *Directory) SubjectExists(ctx context.Context, subject string) (bool, error) {
	_, err := d.store.GetUserByEmail(ctx, subject)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetPassword hashes and stores a new password for a subject.
func (d *Directory) SetPassword(ctx context.Context, subject, newPassword string) error {
	u, err := d.store.GetUserByEmail(ctx, subject)
	if err != nil {
		return err
	}

	phc, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return d.store.SetCredentialHash(ctx, u.ID, phc)
}
