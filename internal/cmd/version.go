package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/version"
)

func newVersionCmd() *cobra.Command {
	var verbose, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args:        cobra.NoArgs,
		Annotations: standalone,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			fallback := "text"
			if asJSON {
				fallback = "json"
			}
			format, f, err := standaloneFormatter(cmd, fallback)
			if err != nil {
				return err
			}
			if format != "text" {
				return f.Format(info)
			}

			if verbose {
				fmt.Fprintln(out, info.String())
				fmt.Fprintf(out, "User-Agent: %s\n", info.UserAgent())
				return nil
			}
			fmt.Fprintf(out, "certipro %s\n", info.Short())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output version information as JSON")
	return cmd
}
