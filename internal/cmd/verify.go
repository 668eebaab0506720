package cmd

import (
	"context"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/platform"
)

func newVerifyCmd() *cobra.Command {
	pages := config.DefaultPages()
	var copyLink bool

	cmd := &cobra.Command{
		Use:   "verify <certificate-code>",
		Short: "Check that a certificate is genuine",
		Long: `Look up a certificate by its public code. No login is needed.

With --copy the shareable verification link is copied to the clipboard.`,
		Args:        cobra.ExactArgs(1),
		Annotations: page(pages.Certificate),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			code := strings.TrimSpace(args[0])

			resp, err := app.call(cmd.Context(), "Verifying certificate...", func(ctx context.Context) (platform.Payload, error) {
				return app.Client.VerifyCertificate(ctx, code)
			})
			if err != nil {
				return err
			}
			if err := app.render(resp, "Certificate is valid"); err != nil {
				return err
			}

			if copyLink {
				app.Toast.CopyToClipboard(verificationLink(app.Client.BaseURL(), pages.Certificate, code))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyLink, "copy", false, "copy the verification link to the clipboard")
	return cmd
}

// verificationLink is the public page for code, served next to the API.
func verificationLink(baseURL, page, code string) string {
	site := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	return site + "/" + page + "?code=" + url.QueryEscape(code)
}
