package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/service"
)

// newWhoamiCommand verifies the configured token by resolving the identity
// behind it.
func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the configured token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, owners, err := app.Service.Owners(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s", user.Login)
			if user.Name != "" {
				fmt.Fprintf(out, " (%s)", user.Name)
			}
			fmt.Fprintf(out, "\nCan file issues under %d account(s)\n", len(owners))

			app.updateSnapshot(func(s *service.Snapshot) {
				s.User = user
				s.Owners = owners
			})
			return nil
		},
	}
}
