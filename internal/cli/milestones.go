package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/service"
)

func newMilestonesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "List, create, or close repository milestones",
	}

	cmd.AddCommand(
		newMilestonesListCommand(app),
		newMilestonesCreateCommand(app),
		newMilestonesCloseCommand(app),
	)
	return cmd
}

func newMilestonesListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner/repo>",
		Short: "List every milestone of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]

			rctx, err := app.Service.RepositoryContext(cmd.Context(), repo)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tTITLE\tSTATE\tDUE")
			for _, milestone := range rctx.Milestones {
				due := ""
				if milestone.DueOn != nil {
					due = milestone.DueOn.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", milestone.Number, milestone.Title, milestone.State, due)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			app.updateSnapshot(func(s *service.Snapshot) {
				s.SetLabels(repo, rctx.Labels)
				s.SetMilestones(repo, rctx.Milestones)
			})
			return nil
		},
	}
}

func newMilestonesCreateCommand(app *App) *cobra.Command {
	var due string

	cmd := &cobra.Command{
		Use:   "create <owner/repo> <title>...",
		Short: "Create one or more milestones in a repository",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]

			var dueOn *time.Time
			if due != "" {
				parsed, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due date %q: %w", due, err)
				}
				dueOn = &parsed
			}

			milestones := make([]domain.Milestone, len(args[1:]))
			for i, title := range args[1:] {
				milestones[i] = domain.Milestone{Title: title, DueOn: dueOn}
			}

			created, err := app.Service.CreateMilestones(cmd.Context(), repo, milestones)
			if err != nil {
				return err
			}

			for _, milestone := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created milestone #%d %q in %s\n", milestone.Number, milestone.Title, repo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")

	return cmd
}

func newMilestonesCloseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close <owner/repo> <number>",
		Short: "Close a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]

			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid milestone number %q", args[1])
			}

			updated, err := app.Service.UpdateMilestone(cmd.Context(), repo, domain.Milestone{
				Number: number,
				State:  "closed",
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Closed milestone #%d %q in %s\n", updated.Number, updated.Title, repo)
			return nil
		},
	}
}
