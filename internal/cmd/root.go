// Package cmd implements the certipro command tree.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	apiURL     string
	configPath string
	format     string
	noColor    bool
	logLevel   string
	metricsOut string
	noInput    bool
}

// apply lets explicitly set flags override the loaded configuration.
func (o *rootOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = o.apiURL
	}
	if flags.Changed("log-level") {
		if err := cfg.Set("logging.level", o.logLevel); err != nil {
			return err
		}
	}
	if flags.Changed("no-color") {
		cfg.Defaults.NoColor = o.noColor
	}
	if flags.Changed("format") {
		if err := cfg.Set("defaults.format", o.format); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// CLI is one certipro invocation: the command tree plus the App its root
// command builds before running a subcommand.
type CLI struct {
	root *cobra.Command
	opts *rootOptions
	app  *App
}

// New builds the complete certipro command tree
func New() *CLI {
	c := &CLI{opts: &rootOptions{}}

	c.root = &cobra.Command{
		Use:   "certipro",
		Short: "Command-line client for the CertiPro certification platform",
		Long: `certipro talks to the CertiPro API: create and verify accounts, log in,
browse skills, take certification tests and verify certificates.

The session is kept in ~/.certipro/session.json (override the directory with
CERTIPRO_HOME). Settings live in ~/.certipro/config.yaml.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.prepare,
	}

	flags := c.root.PersistentFlags()
	flags.StringVar(&c.opts.apiURL, "api-url", "", "CertiPro API base URL (default from config or "+config.EnvAPIURL+")")
	flags.StringVar(&c.opts.configPath, "config", "", "config file (default is $HOME/.certipro/config.yaml)")
	flags.StringVarP(&c.opts.format, "format", "o", "", "output format: text, json, yaml")
	flags.BoolVar(&c.opts.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&c.opts.metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")
	flags.BoolVar(&c.opts.noInput, "no-input", false, "never prompt; read secrets and answers from stdin")

	c.root.AddCommand(
		newAuthCmd(),
		newDashboardCmd(),
		newSkillsCmd(),
		newTestCmd(),
		newVerifyCmd(),
		newDoctorCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return c
}

// Command returns the root command, e.g. to set I/O in tests
func (c *CLI) Command() *cobra.Command {
	return c.root
}

func (c *CLI) prepare(cmd *cobra.Command, args []string) error {
	if annotated(cmd, annotationStandalone) {
		return nil
	}

	app, err := newApp(cmd, c.opts)
	if err != nil {
		return err
	}
	c.app = app
	cmd.SetContext(withApp(cmd.Context(), app))

	if annotated(cmd, annotationAuth) {
		return app.requireLogin()
	}
	return nil
}

// Execute runs the command tree with args (the process arguments when nil).
// Errors are reported to the user before being returned for the exit code.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if args != nil {
		c.root.SetArgs(args)
	}

	ran, err := c.root.ExecuteContextC(ctx)
	if c.app != nil {
		// PersistentPostRunE is skipped on error, so finish runs here.
		c.app.finish(ran, err)
		c.app = nil
		return err
	}
	if err != nil {
		// Failed before any App existed: bad flags, a broken config, or a
		// standalone command.
		toast := ux.NewToaster(c.root.ErrOrStderr(), c.opts.noColor)
		toast.Error(ux.UserMessage(err))
		toast.Hints(ux.Suggestions(err))
	}
	return err
}

// ExecuteContext runs certipro with the process arguments
func ExecuteContext(ctx context.Context) error {
	return New().Execute(ctx, nil)
}
