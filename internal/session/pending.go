package session

import (
	"time"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// Purpose tells which flow a pending verification belongs to
type Purpose string

const (
	PurposeEmail         Purpose = "email"
	PurposePasswordReset Purpose = "password_reset"
)

// PendingKeys names the storage entries of a Pending store
type PendingKeys struct {
	Email     string
	Purpose   string
	ResetCode string
}

// Pending holds the context carried between the steps of registration and
// password reset: the email awaiting a code, the flow it belongs to, and the
// verified reset code.
type Pending struct {
	storage Storage
	keys    PendingKeys
	now     func() time.Time
}

// NewPending creates a Pending store over storage
func NewPending(storage Storage, keys PendingKeys) *Pending {
	return &Pending{storage: storage, keys: keys, now: time.Now}
}

// WithClock replaces the clock used for reset code expiry
func (p *Pending) WithClock(now func() time.Time) *Pending {
	p.now = now
	return p
}

// Begin starts a verification for email. A previous reset code is dropped.
func (p *Pending) Begin(email string, purpose Purpose) error {
	if err := p.storage.Delete(p.keys.ResetCode); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to update pending verification", err)
	}
	if err := p.storage.Set(p.keys.Email, email); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to update pending verification", err)
	}
	if err := p.storage.Set(p.keys.Purpose, string(purpose)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to update pending verification", err)
	}
	return nil
}

// Email returns the email awaiting verification, or ""
func (p *Pending) Email() string {
	email, _ := p.storage.Get(p.keys.Email)
	return email
}

// Purpose returns the pending flow, PurposeEmail when unset
func (p *Pending) Purpose() Purpose {
	if v, ok := p.storage.Get(p.keys.Purpose); ok && v != "" {
		return Purpose(v)
	}
	return PurposeEmail
}

// SetResetCode stores a verified reset code valid for ttl
func (p *Pending) SetResetCode(code string, ttl time.Duration) error {
	if err := SetWithExpiry(p.storage, p.keys.ResetCode, code, ttl, p.now()); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to store reset code", err)
	}
	return nil
}

// ResetCode returns the verified reset code. Expired codes are removed and
// reported absent.
func (p *Pending) ResetCode() (string, bool) {
	var code string
	if !GetWithExpiry(p.storage, p.keys.ResetCode, &code, p.now()) || code == "" {
		return "", false
	}
	return code, true
}

// Clear drops the whole pending context
func (p *Pending) Clear() error {
	if err := p.storage.Delete(p.keys.Email, p.keys.Purpose, p.keys.ResetCode); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to clear pending verification", err)
	}
	return nil
}
