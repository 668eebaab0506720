package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/certipro/internal/auth"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

// OrganizationTypes are offered by the organization signup form.
var OrganizationTypes = []string{
	"Company",
	"University",
	"Training Provider",
	"Government",
	"Non-profit",
	"Other",
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(strings.TrimSuffix(field, ":")))
		}
		return nil
	}
}

func validateEmail(s string) error {
	if !ux.IsValidEmail(strings.TrimSpace(s)) {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validateNewPassword(s string) error {
	if !ux.IsValidPassword(s) {
		return fmt.Errorf("use at least %d characters with upper and lower case letters and a digit", ux.MinPasswordLength)
	}
	return nil
}

// matches returns a validator comparing the confirmation against *password.
func matches(password *string) func(string) error {
	return func(s string) error {
		if s != *password {
			return errors.New(strings.ToLower(auth.MsgPasswordMismatch))
		}
		return nil
	}
}

func validateCode(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("code is required")
	}
	if strings.ContainsAny(s, " \t") {
		return errors.New("code must not contain spaces")
	}
	return nil
}

// Credentials are the values of the login form.
type Credentials struct {
	Email    string
	Password string
}

// LoginForm asks for email and password
func LoginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&c.Email).Validate(validateEmail),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
				Value(&c.Password).Validate(required("Password")),
		).Title("Sign in to CertiPro"),
	)
}

// RegistrationForm asks for the signup fields of a user or, when org is
// non-nil, an organization account.
func RegistrationForm(reg *auth.UserRegistration, org *auth.OrganizationRegistration) *huh.Form {
	account := huh.NewGroup(
		huh.NewInput().Title("Full name").Value(&reg.FullName).Validate(required("Full name")),
		huh.NewInput().Title("Email").Value(&reg.Email).Validate(validateEmail),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
			Value(&reg.Password).Validate(validateNewPassword),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).
			Value(&reg.ConfirmPassword).Validate(matches(&reg.Password)),
	).Title("Create your account")

	terms := huh.NewGroup(
		huh.NewConfirm().Title("Do you accept the terms and conditions?").Value(&reg.TermsAccepted),
	)

	if org == nil {
		return huh.NewForm(account, terms)
	}

	organization := huh.NewGroup(
		huh.NewInput().Title("Organization name").Value(&org.OrganizationName).
			Validate(required("Organization name")),
		huh.NewSelect[string]().Title("Organization type").
			Options(huh.NewOptions(OrganizationTypes...)...).
			Value(&org.OrganizationType),
	).Title("About your organization")

	return huh.NewForm(account, organization, terms)
}

// CodeForm asks for a verification or reset code sent to email.
func CodeForm(email string, code *string) *huh.Form {
	description := "Check your inbox for the code."
	if email != "" {
		description = fmt.Sprintf("We sent a code to %s.", email)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Verification code").Description(description).
				Value(code).Validate(validateCode),
		),
	)
}

// EmailForm asks for the email of the account to recover.
func EmailForm(email *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").
				Description("We will send a reset code to this address.").
				Value(email).Validate(validateEmail),
		),
	)
}

// NewPassword holds the values of the reset password form.
type NewPassword struct {
	Password string
	Confirm  string
}

// NewPasswordForm asks for the new password twice.
func NewPasswordForm(p *NewPassword) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).
				Value(&p.Password).Validate(validateNewPassword),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).
				Value(&p.Confirm).Validate(matches(&p.Password)),
		).Title("Choose a new password"),
	)
}
