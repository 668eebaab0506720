package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// TokenInfo is what a bearer token says about itself. Nothing here is
// verified; it is for display only and never decides login state.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the token claims an expiry before now
func (t *TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// ErrNotJWT is returned for opaque tokens
var ErrNotJWT = errors.New(errors.ErrCodeMalformedResponse, 0, "token is not a JWT")

// ParseTokenInfo decodes the claims of a JWT without checking its signature
func ParseTokenInfo(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	info := &TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, nil
}

// TokenClaims decodes the stored bearer token
func (s *Service) TokenClaims() (*TokenInfo, error) {
	token := s.store.Token()
	if token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, 0, "not logged in")
	}
	return ParseTokenInfo(token)
}
