package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/service"
)

// newOrgsCommand lists every account issues can be filed under: the
// authenticated user plus their organizations.
func newOrgsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List accounts issues can be filed under",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, owners, err := app.Service.Owners(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LOGIN\tKIND")
			for _, owner := range owners {
				fmt.Fprintf(w, "%s\t%s\n", owner.Login, owner.Kind)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			app.updateSnapshot(func(s *service.Snapshot) {
				s.User = user
				s.Owners = owners
			})
			return nil
		},
	}
}
