package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/service"
)

func newLabelsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List or create repository labels",
	}

	cmd.AddCommand(newLabelsListCommand(app), newLabelsCreateCommand(app))
	return cmd
}

func newLabelsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner/repo>",
		Short: "List every label of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]

			rctx, err := app.Service.RepositoryContext(cmd.Context(), repo)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tCOLOR\tDESCRIPTION")
			for _, label := range rctx.Labels {
				fmt.Fprintf(w, "%s\t#%s\t%s\n", label.Name, label.Color, label.Description)
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

func newLabelsCreateCommand(app *App) *cobra.Command {
	var color string
	var description string

	cmd := &cobra.Command{
		Use:   "create <owner/repo> <name>...",
		Short: "Create one or more labels in a repository",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]

			labels := make([]domain.Label, len(args[1:]))
			for i, name := range args[1:] {
				labels[i] = domain.Label{Name: name, Color: color, Description: description}
			}

			created, err := app.Service.CreateLabels(cmd.Context(), repo, labels)
			if err != nil {
				return err
			}

			for _, label := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created label %q in %s\n", label.Name, repo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "ededed", "label color (hex, without '#')")
	cmd.Flags().StringVar(&description, "description", "", "label description")

	return cmd
}
