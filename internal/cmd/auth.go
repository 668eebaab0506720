package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/auth"
	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/session"
	"github.com/felixgeelhaar/certipro/internal/tui"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

// Messages printed when the server response carries none.
const (
	msgRegistered      = "Registration successful! Please verify your email."
	msgLoggedIn        = "Login successful!"
	msgEmailVerified   = "Email verified successfully!"
	msgCodeSent        = "Verification code sent!"
	msgResetCodeSent   = "Password reset code sent to your email"
	msgResetVerified   = "Code verified! Set your new password."
	msgPasswordReset   = "Password reset successful! Please log in."
	msgLoggedOut       = "Logged out successfully."
	msgAlreadyLoggedIn = "You are already logged in. Run 'certipro auth logout' to switch accounts."

	msgInvalidEmail    = "Please enter a valid email address"
	msgInvalidPassword = "Password must be at least 8 characters and include uppercase, lowercase, and a number"
)

func page(path string) map[string]string {
	return map[string]string{annotationPage: path}
}

func protectedPage(path string) map[string]string {
	return map[string]string{annotationPage: path, annotationAuth: "true"}
}

func newAuthCmd() *cobra.Command {
	pages := config.DefaultPages()

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your CertiPro account and session",
		Long: `Manage your CertiPro account and session.

Registration and password reset are multi-step: the email waiting for a code
is remembered between commands until the flow completes.

Examples:
  certipro auth register
  certipro auth verify-email --code 123456
  echo "$PASSWORD" | certipro auth login --email ada@example.com --password-stdin
  certipro auth forgot-password --email ada@example.com
  certipro auth status`,
	}

	cmd.AddCommand(
		newRegisterCmd(pages, false),
		newRegisterCmd(pages, true),
		newLoginCmd(pages),
		newVerifyEmailCmd(pages),
		newResendCodeCmd(pages),
		newForgotPasswordCmd(pages),
		newVerifyResetCodeCmd(pages),
		newResetPasswordCmd(pages),
		newMeCmd(pages),
		newStatusCmd(pages),
		newLogoutCmd(pages),
	)
	return cmd
}

// passwordFlags are shared by the commands that take a password.
type passwordFlags struct {
	password string
	confirm  string
	stdin    bool
}

func (p *passwordFlags) register(cmd *cobra.Command, confirm bool) {
	cmd.Flags().StringVar(&p.password, "password", "", "password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "read the password from stdin")
	if confirm {
		cmd.Flags().StringVar(&p.confirm, "confirm-password", "", "password confirmation (defaults to the password)")
	}
}

// resolve fills the password from stdin when requested. The confirmation
// defaults to the password.
func (p *passwordFlags) resolve(app *App) error {
	if p.stdin {
		secret, err := tui.ReadSecret(app.In, app.ErrOut, "Password: ")
		if err != nil {
			return err
		}
		p.password = secret
	}
	if p.confirm == "" {
		p.confirm = p.password
	}
	return nil
}

func requireValue(value, flag string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewPreconditionError(fmt.Sprintf("--%s is required", flag))
	}
	return nil
}

func checkSignup(reg auth.UserRegistration) error {
	if err := requireValue(reg.FullName, "name"); err != nil {
		return err
	}
	if !ux.IsValidEmail(reg.Email) {
		return errors.NewPreconditionError(msgInvalidEmail)
	}
	if !ux.IsValidPassword(reg.Password) {
		return errors.NewPreconditionError(msgInvalidPassword)
	}
	return nil
}

func newRegisterCmd(pages config.Pages, organization bool) *cobra.Command {
	var (
		reg      auth.OrganizationRegistration
		password passwordFlags
	)

	use, short := "register", "Create an individual account"
	if organization {
		use, short = "register-org", "Create an organization account"
	}

	cmd := &cobra.Command{
		Use:         use,
		Short:       short,
		Args:        cobra.NoArgs,
		Annotations: page(pages.Signup),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if app.Auth.RedirectIfLoggedIn("") {
				app.Toast.Info(msgAlreadyLoggedIn)
				return nil
			}

			if app.Interactive && (reg.Email == "" || password.password == "") {
				var org *auth.OrganizationRegistration
				if organization {
					org = &reg
				}
				if err := tui.RegistrationForm(&reg.UserRegistration, org).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := password.resolve(app); err != nil {
					return err
				}
				reg.Password, reg.ConfirmPassword = password.password, password.confirm
				if err := checkSignup(reg.UserRegistration); err != nil {
					return err
				}
				if organization {
					if err := requireValue(reg.OrganizationName, "org-name"); err != nil {
						return err
					}
				}
			}

			var resp platform.Payload
			var err error
			if organization {
				resp, err = app.call(cmd.Context(), "Creating account...", func(ctx context.Context) (platform.Payload, error) {
					return app.Auth.RegisterOrganization(ctx, reg)
				})
			} else {
				resp, err = app.call(cmd.Context(), "Creating account...", func(ctx context.Context) (platform.Payload, error) {
					return app.Auth.RegisterUser(ctx, reg.UserRegistration)
				})
			}
			if err != nil {
				return err
			}
			if err := app.render(resp, msgRegistered); err != nil {
				return err
			}
			app.Toast.Hints([]string{fmt.Sprintf("Enter the code sent to %s with 'certipro auth verify-email'", reg.Email)})
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().BoolVar(&reg.TermsAccepted, "accept-terms", false, "accept the terms and conditions")
	password.register(cmd, true)
	if organization {
		cmd.Flags().StringVar(&reg.OrganizationName, "org-name", "", "organization name")
		cmd.Flags().StringVar(&reg.OrganizationType, "org-type", tui.OrganizationTypes[0],
			"organization type: "+strings.Join(tui.OrganizationTypes, ", "))
	}
	return cmd
}

func newLoginCmd(pages config.Pages) *cobra.Command {
	var (
		creds    tui.Credentials
		password passwordFlags
		force    bool
	)

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in and store the session",
		Args:        cobra.NoArgs,
		Annotations: page(pages.Login),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if !force && app.Auth.RedirectIfLoggedIn("") {
				app.Toast.Info(msgAlreadyLoggedIn)
				return nil
			}

			creds.Password = password.password
			if app.Interactive && (creds.Email == "" || creds.Password == "") {
				if err := tui.LoginForm(&creds).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			} else {
				if err := password.resolve(app); err != nil {
					return err
				}
				creds.Password = password.password
				if err := requireValue(creds.Email, "email"); err != nil {
					return err
				}
				if err := requireValue(creds.Password, "password"); err != nil {
					return err
				}
			}

			resp, err := app.call(cmd.Context(), "Signing in...", func(ctx context.Context) (platform.Payload, error) {
				return app.Auth.Login(ctx, strings.TrimSpace(creds.Email), creds.Password)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, msgLoggedIn); err != nil {
				return err
			}
			if app.Store.AccountType() == session.AccountOrganization {
				app.Toast.Info("Signed in to the organization dashboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "email address")
	cmd.Flags().BoolVar(&force, "force", false, "log in even when a session exists")
	password.register(cmd, false)
	return cmd
}

// readCode takes the code from args, the flag, a form, or stdin.
func readCode(cmd *cobra.Command, app *App, args []string, flagValue string) (string, error) {
	code := flagValue
	if len(args) > 0 {
		code = args[0]
	}
	if code != "" {
		return strings.TrimSpace(code), nil
	}

	if app.Interactive {
		if err := tui.CodeForm(app.Auth.PendingEmail(), &code).RunWithContext(cmd.Context()); err != nil {
			return "", err
		}
		return strings.TrimSpace(code), nil
	}

	code, err := tui.ReadSecret(app.In, app.ErrOut, "Code: ")
	if err != nil {
		return "", errors.NewPreconditionError("--code is required")
	}
	return strings.TrimSpace(code), nil
}

func newVerifyEmailCmd(pages config.Pages) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:         "verify-email [code]",
		Short:       "Confirm your email with the code you received",
		Args:        cobra.MaximumNArgs(1),
		Annotations: page(pages.Verify),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if app.Auth.PendingEmail() == "" {
				return errors.NewPendingMissingError(auth.MsgNoPendingEmail)
			}

			value, err := readCode(cmd, app, args, code)
			if err != nil {
				return err
			}

			resp, err := app.call(cmd.Context(), "Verifying...", func(ctx context.Context) (platform.Payload, error) {
				return app.Auth.VerifyEmail(ctx, value)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, msgEmailVerified); err != nil {
				return err
			}
			if !app.Auth.IsLoggedIn() {
				app.Toast.Hints([]string{"Log in with 'certipro auth login'"})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "verification code")
	return cmd
}

func newResendCodeCmd(pages config.Pages) *cobra.Command {
	return &cobra.Command{
		Use:         "resend-code",
		Short:       "Send a new code for the pending verification",
		Args:        cobra.NoArgs,
		Annotations: page(pages.Verify),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			resp, err := app.call(cmd.Context(), "Sending code...", app.Auth.ResendCode)
			if err != nil {
				return err
			}
			return app.render(resp, msgCodeSent)
		},
	}
}

func newForgotPasswordCmd(pages config.Pages) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:         "forgot-password",
		Short:       "Start a password reset",
		Args:        cobra.NoArgs,
		Annotations: page(pages.ForgotPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if email == "" && app.Interactive {
				if err := tui.EmailForm(&email).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			}
			email = strings.TrimSpace(email)
			if !ux.IsValidEmail(email) {
				return errors.NewPreconditionError(msgInvalidEmail)
			}

			resp, err := app.call(cmd.Context(), "Sending reset code...", func(ctx context.Context) (platform.Payload, error) {
				return app.Auth.ForgotPassword(ctx, email)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, msgResetCodeSent); err != nil {
				return err
			}
			app.Toast.Hints([]string{"Enter the code with 'certipro auth verify-reset-code'"})
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the account")
	return cmd
}

func newVerifyResetCodeCmd(pages config.Pages) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:         "verify-reset-code [code]",
		Short:       "Check the password reset code",
		Args:        cobra.MaximumNArgs(1),
		Annotations: page(pages.ForgotPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if app.Auth.PendingEmail() == "" {
				return errors.NewPendingMissingError(auth.MsgNoPendingReset)
			}

			value, err := readCode(cmd, app, args, code)
			if err != nil {
				return err
			}

			resp, err := app.call(cmd.Context(), "Verifying...", func(ctx context.Context) (platform.Payload, error) {
				return app.Auth.VerifyResetCode(ctx, value)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, msgResetVerified); err != nil {
				return err
			}
			app.Toast.Hints([]string{
				fmt.Sprintf("Run 'certipro auth reset-password' within %s", app.Config.Session.ResetCodeTTL.Round(time.Minute)),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "reset code")
	return cmd
}

func newResetPasswordCmd(pages config.Pages) *cobra.Command {
	var password passwordFlags

	cmd := &cobra.Command{
		Use:         "reset-password",
		Short:       "Set a new password with the verified reset code",
		Args:        cobra.NoArgs,
		Annotations: page(pages.SetPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			if app.Interactive && password.password == "" && !password.stdin {
				np := tui.NewPassword{}
				if err := tui.NewPasswordForm(&np).RunWithContext(cmd.Context()); err != nil {
					return err
				}
				password.password, password.confirm = np.Password, np.Confirm
			} else {
				if err := password.resolve(app); err != nil {
					return err
				}
				if !ux.IsValidPassword(password.password) {
					return errors.NewPreconditionError(msgInvalidPassword)
				}
			}

			resp, err := app.call(cmd.Context(), "Saving password...", func(ctx context.Context) (platform.Payload, error) {
				return app.Auth.ResetPassword(ctx, password.password, password.confirm)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, msgPasswordReset); err != nil {
				return err
			}
			app.Router.Navigate(pages.Login)
			return nil
		},
	}

	password.register(cmd, true)
	cmd.Annotations[annotationQuietRedirect] = "true"
	return cmd
}

func newMeCmd(pages config.Pages) *cobra.Command {
	return &cobra.Command{
		Use:         "me",
		Short:       "Show the profile of the logged-in user",
		Args:        cobra.NoArgs,
		Annotations: protectedPage(pages.Dashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			resp, err := app.call(cmd.Context(), "Loading profile...", app.Auth.Me)
			if err != nil {
				return err
			}
			return app.render(resp, "")
		},
	}
}

// Status is the local view of the session printed by `auth status`.
type Status struct {
	LoggedIn         bool           `json:"logged_in" yaml:"logged_in"`
	AccountType      string         `json:"account_type,omitempty" yaml:"account_type,omitempty"`
	User             map[string]any `json:"user,omitempty" yaml:"user,omitempty"`
	TokenFingerprint string         `json:"token_fingerprint,omitempty" yaml:"token_fingerprint,omitempty"`
	TokenExpires     string         `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
	TokenExpired     bool           `json:"token_expired,omitempty" yaml:"token_expired,omitempty"`
	PendingEmail     string         `json:"pending_email,omitempty" yaml:"pending_email,omitempty"`
	PendingFlow      string         `json:"pending_flow,omitempty" yaml:"pending_flow,omitempty"`
	APIURL           string         `json:"api_url" yaml:"api_url"`
}

func buildStatus(app *App, now time.Time) Status {
	st := Status{
		LoggedIn: app.Auth.IsLoggedIn(),
		APIURL:   app.Client.BaseURL(),
	}

	if st.LoggedIn {
		st.AccountType = string(app.Store.AccountType())
		st.User, _ = app.Store.User()
		st.TokenFingerprint = platform.Fingerprint(app.Store.Token())
		if info, err := app.Auth.TokenClaims(); err == nil && info.ExpiresAt != nil {
			st.TokenExpires = info.ExpiresAt.UTC().Format(time.RFC3339)
			st.TokenExpired = info.Expired(now)
		}
	}

	if email := app.Auth.PendingEmail(); email != "" {
		st.PendingEmail = email
		st.PendingFlow = string(app.Auth.VerificationType())
	}
	return st
}

func newStatusCmd(pages config.Pages) *cobra.Command {
	var copyToken bool

	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Show the stored session without calling the API",
		Args:        cobra.NoArgs,
		Annotations: page(pages.Dashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			st := buildStatus(app, time.Now())

			if copyToken {
				if !st.LoggedIn {
					return errNotLoggedIn()
				}
				app.Toast.CopyToClipboard(app.Store.Token())
			}

			f, err := app.formatter()
			if err != nil {
				return err
			}
			if app.Format != "text" {
				return f.Format(st)
			}

			if !st.LoggedIn {
				app.Toast.Info("Not logged in")
			} else {
				name := field(platform.Payload(st.User), "fullName", "name", "email")
				app.Toast.Success(fmt.Sprintf("Logged in as %s (%s)", name, st.AccountType))
			}
			return f.Format(st)
		},
	}

	cmd.Flags().BoolVar(&copyToken, "copy-token", false, "copy the bearer token to the clipboard")
	return cmd
}

func newLogoutCmd(pages config.Pages) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget pending verifications",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationPage:          pages.Dashboard,
			annotationQuietRedirect: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if !app.Auth.IsLoggedIn() {
				app.Toast.Info("Not logged in.")
				return app.Pending.Clear()
			}
			if app.Interactive {
				ok, err := tui.PromptForConfirmation(cmd.Context(), "Log out of CertiPro?", true)
				if err != nil || !ok {
					return err
				}
			}
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			app.Toast.Success(msgLoggedOut)
			return nil
		},
	}
}
