// Package auth implements the CertiPro account workflows (registration,
// login, email verification, password reset) on top of the API client and
// the session stores.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/log"
	"github.com/felixgeelhaar/certipro/internal/metrics"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/session"
)

// Messages of the client-side checks.
const (
	MsgPasswordMismatch    = "Passwords do not match"
	MsgTermsNotAccepted    = "You must accept the terms and conditions"
	MsgNoPendingEmail      = "No email pending verification"
	MsgNoResendEmail       = "No email found for resending code"
	MsgNoPendingReset      = "No email pending password reset"
	MsgResetSessionExpired = "Password reset session expired"
)

// API is the subset of the platform client the workflows call.
type API interface {
	Get(ctx context.Context, endpoint string, opts ...platform.RequestOption) (platform.Payload, error)
	Post(ctx context.Context, endpoint string, body any, opts ...platform.RequestOption) (platform.Payload, error)
}

// UserRegistration is the signup form of an individual account
type UserRegistration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	TermsAccepted   bool   `json:"termsAccepted"`
}

// OrganizationRegistration is the signup form of an organization account
type OrganizationRegistration struct {
	UserRegistration
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType"`
}

// Service runs the account workflows
type Service struct {
	api      API
	store    *session.Store
	pending  *session.Pending
	nav      platform.Navigator
	pages    config.Pages
	resetTTL time.Duration
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service
type Option func(*Service)

// WithResetCodeTTL sets how long a verified reset code stays usable
func WithResetCodeTTL(ttl time.Duration) Option {
	return func(s *Service) { s.resetTTL = ttl }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the workflow service
func NewService(api API, store *session.Store, pending *session.Pending, nav platform.Navigator, pages config.Pages, opts ...Option) *Service {
	s := &Service{
		api:      api,
		store:    store,
		pending:  pending,
		nav:      nav,
		pages:    pages,
		resetTTL: 15 * time.Minute,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkPasswords(password, confirm string, termsAccepted bool) error {
	if password != confirm {
		return errors.NewPreconditionError(MsgPasswordMismatch)
	}
	if !termsAccepted {
		return errors.NewPreconditionError(MsgTermsNotAccepted)
	}
	return nil
}

// RegisterUser creates an individual account and leaves its email pending
// verification.
func (s *Service) RegisterUser(ctx context.Context, reg UserRegistration) (platform.Payload, error) {
	if err := checkPasswords(reg.Password, reg.ConfirmPassword, reg.TermsAccepted); err != nil {
		return nil, s.track("register_user", err)
	}

	resp, err := s.api.Post(ctx, config.EndpointRegisterUser, reg, platform.Public())
	if err != nil {
		return nil, s.track("register_user", err)
	}

	return resp, s.track("register_user", s.pending.Begin(reg.Email, session.PurposeEmail))
}

// RegisterOrganization creates an organization account and leaves its email
// pending verification.
func (s *Service) RegisterOrganization(ctx context.Context, reg OrganizationRegistration) (platform.Payload, error) {
	if err := checkPasswords(reg.Password, reg.ConfirmPassword, reg.TermsAccepted); err != nil {
		return nil, s.track("register_organization", err)
	}

	resp, err := s.api.Post(ctx, config.EndpointRegisterOrganization, reg, platform.Public())
	if err != nil {
		return nil, s.track("register_organization", err)
	}

	return resp, s.track("register_organization", s.pending.Begin(reg.Email, session.PurposeEmail))
}

// Login authenticates and stores the session. An unverified account gets a
// 403 RequestError with payload {"requiresVerification": true} and its email
// is left pending verification.
func (s *Service) Login(ctx context.Context, email, password string) (platform.Payload, error) {
	resp, err := s.api.Post(ctx, config.EndpointLogin, map[string]string{
		"email":    email,
		"password": password,
	}, platform.Public())
	if err != nil {
		return nil, s.track("login", err)
	}

	if !resp.Success() || !resp.Has("data") {
		return resp, s.track("login", nil)
	}

	data := resp.Data()
	user := data.Map("user")
	if user == nil {
		return nil, s.track("login", errors.NewMalformedResponseError(200, fmt.Errorf("login response has no user")))
	}

	if !user.Bool("isEmailVerified") {
		if err := s.pending.Begin(email, session.PurposeEmail); err != nil {
			return nil, s.track("login", err)
		}
		return nil, s.track("login", errors.NewVerificationRequiredError())
	}

	if err := s.saveSession(data); err != nil {
		return nil, s.track("login", err)
	}
	s.logger.InfoContext(ctx, "logged in", "account_type", string(s.store.AccountType()))
	return resp, s.track("login", nil)
}

// VerifyEmail confirms the pending email with code. When the server answers
// with a token the user is logged in.
func (s *Service) VerifyEmail(ctx context.Context, code string) (platform.Payload, error) {
	email := s.pending.Email()
	if email == "" {
		return nil, s.track("verify_email", errors.NewPendingMissingError(MsgNoPendingEmail))
	}

	resp, err := s.api.Post(ctx, config.EndpointVerifyEmail, map[string]string{
		"email": email,
		"code":  code,
	}, platform.Public())
	if err != nil {
		return nil, s.track("verify_email", err)
	}

	if resp.Success() {
		if err := s.pending.Clear(); err != nil {
			return nil, s.track("verify_email", err)
		}
		if data := resp.Data(); data.String("token") != "" {
			if err := s.saveSession(data); err != nil {
				return nil, s.track("verify_email", err)
			}
		}
	}
	return resp, s.track("verify_email", nil)
}

// ResendCode asks for a new code for the pending email and flow
func (s *Service) ResendCode(ctx context.Context) (platform.Payload, error) {
	email := s.pending.Email()
	if email == "" {
		return nil, s.track("resend_code", errors.NewPendingMissingError(MsgNoResendEmail))
	}

	resp, err := s.api.Post(ctx, config.EndpointResendCode, map[string]string{
		"email": email,
		"type":  string(s.pending.Purpose()),
	}, platform.Public())
	return resp, s.track("resend_code", err)
}

// ForgotPassword starts a password reset for email
func (s *Service) ForgotPassword(ctx context.Context, email string) (platform.Payload, error) {
	resp, err := s.api.Post(ctx, config.EndpointForgotPassword, map[string]string{
		"email": email,
	}, platform.Public())
	if err != nil {
		return nil, s.track("forgot_password", err)
	}

	if resp.Success() {
		if err := s.pending.Begin(email, session.PurposePasswordReset); err != nil {
			return nil, s.track("forgot_password", err)
		}
	}
	return resp, s.track("forgot_password", nil)
}

// VerifyResetCode checks code against the pending reset and keeps it for
// ResetPassword.
func (s *Service) VerifyResetCode(ctx context.Context, code string) (platform.Payload, error) {
	email := s.pending.Email()
	if email == "" {
		return nil, s.track("verify_reset_code", errors.NewPendingMissingError(MsgNoPendingReset))
	}

	resp, err := s.api.Post(ctx, config.EndpointVerifyResetCode, map[string]string{
		"email": email,
		"code":  code,
	}, platform.Public())
	if err != nil {
		return nil, s.track("verify_reset_code", err)
	}

	if resp.Success() {
		if err := s.pending.SetResetCode(code, s.resetTTL); err != nil {
			return nil, s.track("verify_reset_code", err)
		}
	}
	return resp, s.track("verify_reset_code", nil)
}

// ResetPassword sets a new password using the verified reset code
func (s *Service) ResetPassword(ctx context.Context, newPassword, confirmPassword string) (platform.Payload, error) {
	email := s.pending.Email()
	code, ok := s.pending.ResetCode()
	if email == "" || !ok {
		return nil, s.track("reset_password", errors.NewPendingMissingError(MsgResetSessionExpired))
	}
	if newPassword != confirmPassword {
		return nil, s.track("reset_password", errors.NewPreconditionError(MsgPasswordMismatch))
	}

	resp, err := s.api.Post(ctx, config.EndpointResetPassword, map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	}, platform.Public())
	if err != nil {
		return nil, s.track("reset_password", err)
	}

	if resp.Success() {
		if err := s.pending.Clear(); err != nil {
			return nil, s.track("reset_password", err)
		}
	}
	return resp, s.track("reset_password", nil)
}

// Me fetches the profile of the logged-in user
func (s *Service) Me(ctx context.Context) (platform.Payload, error) {
	return s.api.Get(ctx, config.EndpointMe)
}

// Logout ends the session, drops any pending verification, and navigates to
// the login page.
func (s *Service) Logout() error {
	storeErr := s.store.Clear()
	pendingErr := s.pending.Clear()
	s.nav.Navigate(s.pages.Login)
	s.track("logout", nil)
	if storeErr != nil {
		return storeErr
	}
	return pendingErr
}

func (s *Service) IsLoggedIn() bool {
	return s.store.IsLoggedIn()
}

// RequireAuth navigates to the login page when nobody is logged in.
func (s *Service) RequireAuth() bool {
	if !s.IsLoggedIn() {
		s.nav.Navigate(s.pages.Login)
		return false
	}
	return true
}

// RedirectIfLoggedIn sends a logged-in user to destination, or to the
// dashboard matching the account type when destination is empty.
func (s *Service) RedirectIfLoggedIn(destination string) bool {
	if !s.IsLoggedIn() {
		return false
	}
	switch {
	case destination != "":
		s.nav.Navigate(destination)
	case s.store.AccountType() == session.AccountOrganization:
		s.nav.Navigate(s.pages.OrgDashboard)
	default:
		s.nav.Navigate(s.pages.Dashboard)
	}
	return true
}

// PendingEmail returns the email awaiting a code, or ""
func (s *Service) PendingEmail() string {
	return s.pending.Email()
}

// VerificationType returns the flow the pending email belongs to
func (s *Service) VerificationType() session.Purpose {
	return s.pending.Purpose()
}

// Store exposes the session the service writes to
func (s *Service) Store() *session.Store {
	return s.store
}

func (s *Service) saveSession(data platform.Payload) error {
	user := data.Map("user")
	accountType := session.AccountType(user.String("accountType"))
	if accountType == "" {
		accountType = session.AccountUser
	}

	if err := s.store.SetToken(data.String("token")); err != nil {
		return err
	}
	if err := s.store.SetUser(map[string]any(user)); err != nil {
		return err
	}
	return s.store.SetAccountType(accountType)
}

func (s *Service) track(step string, err error) error {
	s.metrics.ObserveAuthFlow(step, err)
	if err != nil {
		s.logger.WithError(err).Debug("auth step failed", "step", step)
	}
	return err
}
