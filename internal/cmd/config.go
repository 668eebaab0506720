package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

var standalone = map[string]string{annotationStandalone: "true"}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage certipro configuration",
		Long: `Manage the configuration stored at ~/.certipro/config.yaml.

Examples:
  certipro config view
  certipro config get api.base_url
  certipro config set api.base_url https://api.certipro.example/api
  certipro config path`,
		Annotations: standalone,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display the effective configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigView,
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one configuration value",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one configuration value",
			Long: `Change one configuration value using dot notation. The file is
validated before it is written, so a broken value is never saved.

Keys:
  api.base_url, api.user_agent
  session.token_check_interval, session.reset_code_ttl
  defaults.format (text|json|yaml), defaults.no_color
  logging.level (debug|info|warn|error), logging.format (json|text)
  logging.enable_file, logging.log_dir`,
			Args: cobra.ExactArgs(2),
			RunE: runConfigSet,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
	)
	return cmd
}

// configPath is the --config flag or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.Path()
}

// standaloneFormatter builds the formatter for commands that run without
// an App. fallback applies when --format is not set.
func standaloneFormatter(cmd *cobra.Command, fallback string) (string, ux.Formatter, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = fallback
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = noColor || os.Getenv("NO_COLOR") != ""

	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: noColor})
	return format, f, err
}

func runConfigView(cmd *cobra.Command, args []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	format, f, err := standaloneFormatter(cmd, cfg.Defaults.Format)
	if err != nil {
		return err
	}
	if format == "text" {
		// The file itself is the most readable text form.
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n\n", path)
		f, err = ux.NewFormatter("yaml", &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
	}
	return f.Format(cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return ux.FormatError(err, "reading configuration")
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Read(path)
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return ux.FormatError(err, "setting "+key)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	ux.NewToaster(cmd.ErrOrStderr(), noColor || os.Getenv("NO_COLOR") != "").
		Success(fmt.Sprintf("Set %s = %s", key, value))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
