// Package session keeps the authenticated session (bearer token, user
// profile, account type) and the short-lived pending verification context.
package session

import (
	"encoding/json"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// AccountType distinguishes individual and organization accounts
type AccountType string

const (
	AccountUser         AccountType = "user"
	AccountOrganization AccountType = "organization"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	return t == AccountUser || t == AccountOrganization
}

// Keys names the storage entries of a Store
type Keys struct {
	Token       string
	User        string
	AccountType string
}

// Store is the durable session. Token presence alone decides whether the
// user is logged in.
type Store struct {
	storage Storage
	keys    Keys
}

// NewStore creates a Store over storage
func NewStore(storage Storage, keys Keys) *Store {
	return &Store{storage: storage, keys: keys}
}

// Token returns the bearer token, or "" when absent
func (s *Store) Token() string {
	token, _ := s.storage.Get(s.keys.Token)
	return token
}

func (s *Store) SetToken(token string) error {
	return s.set(s.keys.Token, token)
}

// Clear removes token, user and account type together.
func (s *Store) Clear() error {
	if err := s.storage.Delete(s.keys.Token, s.keys.User, s.keys.AccountType); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to clear session", err)
	}
	return nil
}

// SetUser stores an arbitrary JSON-serializable user record
func (s *Store) SetUser(user any) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to encode user", err)
	}
	return s.set(s.keys.User, string(data))
}

// User returns the stored user record. Absent or corrupt data reports false.
func (s *Store) User() (map[string]any, bool) {
	var user map[string]any
	if err := s.DecodeUser(&user); err != nil || user == nil {
		return nil, false
	}
	return user, true
}

// DecodeUser unmarshals the stored user record into v
func (s *Store) DecodeUser(v any) error {
	raw, ok := s.storage.Get(s.keys.User)
	if !ok || raw == "" {
		return errors.New(errors.ErrCodeStorage, 0, "no user stored")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "stored user is corrupt", err)
	}
	return nil
}

func (s *Store) SetAccountType(t AccountType) error {
	return s.set(s.keys.AccountType, string(t))
}

// AccountType returns the stored account type, or "" when absent
func (s *Store) AccountType() AccountType {
	t, _ := s.storage.Get(s.keys.AccountType)
	return AccountType(t)
}

func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) set(key, value string) error {
	if err := s.storage.Set(key, value); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, 0, "failed to save session", err)
	}
	return nil
}
