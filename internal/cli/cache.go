package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persisted metadata snapshot",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show what metadata is cached on disk",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				snapshot, err := app.Cache.Load()
				if err != nil {
					return err
				}
				if snapshot == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No metadata cached")
					return nil
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cached at %s\n", snapshot.Timestamp.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Owners: %d\n", len(snapshot.Owners))
				fmt.Fprintf(out, "Repository lists: %d\n", len(snapshot.Repositories))
				fmt.Fprintf(out, "Label lists: %d\n", len(snapshot.Labels))
				fmt.Fprintf(out, "Milestone lists: %d\n", len(snapshot.Milestones))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete the cached metadata",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.Cache.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Metadata cache cleared")
				return nil
			},
		},
	)

	return cmd
}
