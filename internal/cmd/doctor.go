package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/health"
	"github.com/felixgeelhaar/certipro/internal/ux"
	"github.com/felixgeelhaar/certipro/internal/version"
)

func newDoctorCmd() *cobra.Command {
	pages := config.DefaultPages()

	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the API connection and the stored session",
		Long: `Run local diagnostics:

  • API reachability (no token is sent)
  • Session file permissions and token expiry
  • Clipboard support for --copy

Exits non-zero when a check is unhealthy.

Examples:
  certipro doctor
  certipro doctor --format json`,
		Args:        cobra.NoArgs,
		Annotations: page(pages.Dashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			sessionFile, err := config.SessionPath()
			if err != nil {
				return err
			}

			userAgent := app.Config.API.UserAgent
			if userAgent == "" {
				userAgent = version.GetInfo().UserAgent()
			}

			m := health.NewManager()
			m.AddChecker(health.NewAPIChecker(app.Config.API.BaseURL, http.DefaultClient, userAgent))
			m.AddChecker(health.NewSessionChecker(sessionFile, app.Store, nil))
			m.AddChecker(health.NewClipboardChecker())

			var report health.Report
			err = ux.WithLoader(cmd.Context(), app.ErrOut, "Running checks...", func(ctx context.Context) error {
				report = m.Check(ctx)
				return nil
			})
			if err != nil {
				return err
			}
			for _, r := range report.Results {
				app.Logger.Debug("health check", "check", r.Name, "status", r.Status.String(), "latency", r.Latency)
			}

			if err := app.printReport(report); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errors.New(errors.ErrCodeHealthCheck, 0, "Some checks failed")
			}
			return nil
		},
	}
}

func (a *App) printReport(report health.Report) error {
	f, err := a.formatter()
	if err != nil {
		return err
	}
	if a.Format != "text" {
		return f.Format(report)
	}

	for _, r := range report.Results {
		style := a.Styles.Status
		icon := "✓"
		switch r.Status {
		case health.StatusDegraded:
			style, icon = a.Styles.Warning, "!"
		case health.StatusUnhealthy:
			style, icon = a.Styles.Error, "✗"
		}
		fmt.Fprintf(a.Out, "  %s %-10s %s\n", style.Render(icon), r.Name, r.Message)
		if r.Hint != "" {
			fmt.Fprintf(a.Out, "    %s\n", a.Styles.Muted.Render("→ "+r.Hint))
		}
	}

	switch report.Status {
	case health.StatusHealthy:
		a.Toast.Success("Everything looks good")
	case health.StatusDegraded:
		a.Toast.Warning("Working, with warnings")
	}
	return nil
}
