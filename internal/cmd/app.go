package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/auth"
	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/log"
	"github.com/felixgeelhaar/certipro/internal/metrics"
	"github.com/felixgeelhaar/certipro/internal/nav"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/session"
	"github.com/felixgeelhaar/certipro/internal/tui"
	"github.com/felixgeelhaar/certipro/internal/ux"
	"github.com/felixgeelhaar/certipro/internal/version"
)

// Command annotations read by the root command before every run.
const (
	// annotationPage is the page path a command runs as.
	annotationPage = "certipro.page"
	// annotationAuth marks commands that need a logged-in session.
	annotationAuth = "certipro.auth"
	// annotationQuietRedirect suppresses the login notice after a redirect
	// the command asked for itself (logout).
	annotationQuietRedirect = "certipro.quiet-redirect"
	// annotationStandalone marks commands that run without an App
	// (config, version) so a broken config can still be repaired.
	annotationStandalone = "certipro.standalone"
)

// pendingPath is swapped in tests so they never touch the shared temp dir.
var pendingPath = config.PendingPath

// App holds the dependencies shared by every command. The root command
// builds one per execution.
type App struct {
	Config  *config.Config
	Pages   config.Pages
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Router  *nav.Router
	Store   *session.Store
	Pending *session.Pending
	Client  *platform.Client
	Auth    *auth.Service
	Toast   *ux.Toaster
	Styles  tui.Styles

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	Format      string
	NoColor     bool
	Interactive bool

	gatherer   prometheus.Gatherer
	metricsOut string
	closeLog   func()
	started    time.Time
}

type appKey struct{}

func withApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// appFrom returns the App the root command stored on cmd's context.
func appFrom(cmd *cobra.Command) *App {
	app, _ := cmd.Context().Value(appKey{}).(*App)
	if app == nil {
		panic("cmd: command ran without the root command's PersistentPreRunE")
	}
	return app
}

// newApp loads configuration and wires the session stores, the API client
// and the auth workflows for one command execution.
func newApp(cmd *cobra.Command, opts *rootOptions) (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return nil, err
	}

	logger, closeLog := setupLogging(cfg)
	registry, m := metrics.NewRegistry()

	sessionFile, err := config.SessionPath()
	if err != nil {
		closeLog()
		return nil, err
	}

	keys := cfg.Storage
	store := session.NewStore(session.NewFileStorage(sessionFile), session.Keys{
		Token:       keys.Token,
		User:        keys.User,
		AccountType: keys.AccountType,
	})
	pending := session.NewPending(session.NewFileStorage(pendingPath()), session.PendingKeys{
		Email:     keys.PendingEmail,
		Purpose:   keys.VerificationType,
		ResetCode: keys.ResetCode,
	})

	pages := config.DefaultPages()
	router := nav.NewRouter(pageOf(cmd, pages))

	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = version.GetInfo().UserAgent()
	}

	client := platform.NewClient(cfg.API.BaseURL, store,
		platform.WithNavigator(router),
		platform.WithLoginPage(pages.Login),
		platform.WithAllowList(pages.AllowList...),
		platform.WithLogger(logger),
		platform.WithMetrics(m),
		platform.WithUserAgent(userAgent),
	)

	service := auth.NewService(client, store, pending, router, pages,
		auth.WithResetCodeTTL(cfg.Session.ResetCodeTTL),
		auth.WithLogger(logger),
		auth.WithMetrics(m),
	)

	noColor := cfg.Defaults.NoColor || os.Getenv("NO_COLOR") != ""
	styles := tui.DefaultStyles()
	if noColor {
		styles = tui.PlainStyles()
	}

	in := cmd.InOrStdin()
	terminal := tui.IsTerminal(in)
	if !terminal {
		// Shared so secrets and answers can be read line by line.
		in = bufio.NewReader(in)
	}

	return &App{
		Config:      cfg,
		Pages:       pages,
		Logger:      logger,
		Metrics:     m,
		Router:      router,
		Store:       store,
		Pending:     pending,
		Client:      client,
		Auth:        service,
		Toast:       ux.NewToaster(cmd.ErrOrStderr(), noColor),
		Styles:      styles,
		In:          in,
		Out:         cmd.OutOrStdout(),
		ErrOut:      cmd.ErrOrStderr(),
		Format:      cfg.Defaults.Format,
		NoColor:     noColor,
		Interactive: terminal && !opts.noInput && tui.ShouldPrompt(),
		gatherer:    registry,
		metricsOut:  opts.metricsOut,
		closeLog:    closeLog,
		started:     time.Now(),
	}, nil
}

// pageOf returns the page annotation of cmd or its closest ancestor.
func pageOf(cmd *cobra.Command, pages config.Pages) string {
	for c := cmd; c != nil; c = c.Parent() {
		if page, ok := c.Annotations[annotationPage]; ok {
			return page
		}
	}
	return pages.Dashboard
}

func annotated(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[key] == "true" {
			return true
		}
	}
	return false
}

// finish runs after every command, successful or not: it reports errors,
// the login redirect, and flushes metrics and logs.
func (a *App) finish(cmd *cobra.Command, err error) {
	name := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	a.Metrics.ObserveCommand(name, time.Since(a.started), err)

	if err != nil {
		a.Logger.WithError(err).Error("command failed", "command", name)
		a.Toast.Error(ux.UserMessage(err))
		a.Toast.Hints(ux.Suggestions(err))
	}

	if target, ok := a.Router.Redirected(); ok && target == a.Pages.Login && !annotated(cmd, annotationQuietRedirect) {
		a.Toast.Warning("Your session has ended. Run 'certipro auth login' to sign in again.")
	}

	if a.metricsOut != "" {
		if werr := metrics.WriteTextfile(a.gatherer, a.metricsOut); werr != nil {
			a.Logger.WithError(werr).Warn("failed to write metrics", "path", a.metricsOut)
		}
	}

	a.closeLog()
}

// requireLogin is the guard of protected commands.
func (a *App) requireLogin() error {
	if a.Auth.RequireAuth() {
		return nil
	}
	return errNotLoggedIn()
}

// MsgNotLoggedIn is reported by protected commands run without a session.
const MsgNotLoggedIn = "Please log in to continue"

func errNotLoggedIn() error {
	return errors.NewUnauthorizedError(MsgNotLoggedIn, nil)
}
