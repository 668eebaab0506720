package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/platform"
)

func newSkillsCmd() *cobra.Command {
	pages := config.DefaultPages()

	cmd := &cobra.Command{
		Use:         "skills",
		Short:       "Browse the skills you can get certified in",
		Annotations: protectedPage(pages.Dashboard),
	}

	cmd.AddCommand(
		newSkillsListCmd(),
		skillsCmd("trending", "List trending skills", "Loading trending skills...",
			func(app *App) func(context.Context) (platform.Payload, error) {
				return app.Client.TrendingSkills
			}),
		&cobra.Command{
			Use:   "categories",
			Short: "List skill categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFrom(cmd)
				resp, err := app.call(cmd.Context(), "Loading categories...", app.Client.SkillCategories)
				if err != nil {
					return err
				}
				return app.render(resp, "")
			},
		},
		skillCmd("show <skillId>", "Show one skill", "Loading skill...",
			func(app *App) func(context.Context, string) (platform.Payload, error) {
				return app.Client.Skill
			}),
		skillCmd("can-attempt <skillId>", "Check whether you may take the skill's test", "Checking eligibility...",
			func(app *App) func(context.Context, string) (platform.Payload, error) {
				return app.Client.CanAttempt
			}),
		skillCmd("progress <skillId>", "Show your progress on a skill", "Loading progress...",
			func(app *App) func(context.Context, string) (platform.Payload, error) {
				return app.Client.SkillProgress
			}),
	)
	return cmd
}

func newSkillsListCmd() *cobra.Command {
	var filter platform.SkillFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			resp, err := app.call(cmd.Context(), "Loading skills...", func(ctx context.Context) (platform.Payload, error) {
				return app.Client.Skills(ctx, filter)
			})
			if err != nil {
				return err
			}
			return app.renderList(resp, "skills", "No skills match", skillLine)
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "search text")
	cmd.Flags().StringVar(&filter.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&filter.Level, "level", "", "level filter")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "skills per page")
	return cmd
}

// skillsCmd is a listing subcommand without arguments.
func skillsCmd(use, short, loading string, endpoint func(*App) func(context.Context) (platform.Payload, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			resp, err := app.call(cmd.Context(), loading, endpoint(app))
			if err != nil {
				return err
			}
			return app.renderList(resp, "skills", "No skills found", skillLine)
		},
	}
}

// skillCmd is a subcommand taking one skill id.
func skillCmd(use, short, loading string, endpoint func(*App) func(context.Context, string) (platform.Payload, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			fetch := endpoint(app)
			resp, err := app.call(cmd.Context(), loading, func(ctx context.Context) (platform.Payload, error) {
				return fetch(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return app.render(resp, "")
		},
	}
}

func skillLine(p platform.Payload) string {
	return fmt.Sprintf("%-26s %-36s %-14s %s",
		field(p, "_id", "id"),
		field(p, "name", "title"),
		field(p, "category"),
		field(p, "level", "difficulty"))
}
