package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

func newDashboardCmd() *cobra.Command {
	pages := config.DefaultPages()

	cmd := &cobra.Command{
		Use:         "dashboard",
		Aliases:     []string{"dash"},
		Short:       "Show your dashboard: stats, certificates and activity",
		Annotations: protectedPage(pages.Dashboard),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			resp, err := app.call(cmd.Context(), "Loading dashboard...", app.Client.DashboardStats)
			if err != nil {
				return err
			}
			return app.render(resp, "")
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show dashboard statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading stats...", app.Client.DashboardStats)
				if err != nil {
					return err
				}
				return app.render(resp, "")
			},
		},
		&cobra.Command{
			Use:   "certificates",
			Short: "List your certificates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading certificates...", app.Client.Certificates)
				if err != nil {
					return err
				}
				return app.renderList(resp, "certificates", "No certificates yet", certificateLine)
			},
		},
		&cobra.Command{
			Use:   "qr-views",
			Short: "Show how often your certificate QR codes were scanned",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading QR views...", app.Client.CertificateQRViews)
				if err != nil {
					return err
				}
				return app.render(resp, "")
			},
		},
		&cobra.Command{
			Use:   "activities",
			Short: "List recent account activity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading activity...", app.Client.Activities)
				if err != nil {
					return err
				}
				now := time.Now()
				return app.renderList(resp, "activities", "No recent activity", func(p platform.Payload) string {
					return activityLine(p, now)
				})
			},
		},
		&cobra.Command{
			Use:   "templates",
			Short: "List certificate templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading templates...", app.Client.Templates)
				if err != nil {
					return err
				}
				return app.renderList(resp, "templates", "No templates available", func(p platform.Payload) string {
					return fmt.Sprintf("%-24s %s", field(p, "_id", "id"), field(p, "name", "title"))
				})
			},
		},
	)
	return cmd
}

func certificateLine(p platform.Payload) string {
	issued := ux.InvalidDate
	if raw := field(p, "issuedAt", "issueDate", "createdAt"); raw != "" {
		issued = ux.FormatDate(raw)
	}
	return fmt.Sprintf("%-14s %-32s %s",
		field(p, "certificateCode", "code", "_id", "id"),
		field(p, "skillName", "title", "name"),
		issued)
}

func activityLine(p platform.Payload, now time.Time) string {
	when := field(p, "createdAt", "timestamp", "date")
	return fmt.Sprintf("%-16s %s", ux.TimeAgo(when, now), field(p, "description", "message", "title", "type"))
}
