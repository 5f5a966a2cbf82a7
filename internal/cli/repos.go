package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/service"
)

// newReposCommand lists the repositories and assignable accounts of an owner.
func newReposCommand(app *App) *cobra.Command {
	var asUser bool

	cmd := &cobra.Command{
		Use:   "repos <owner>",
		Short: "List an owner's repositories and assignable accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := resolveOwner(cmd, app, args[0], asUser)
			if err != nil {
				return err
			}

			octx, err := app.Service.OwnerContext(cmd.Context(), owner)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPOSITORY\tVISIBILITY")
			for _, repo := range octx.Repositories {
				visibility := "public"
				if repo.Private {
					visibility = "private"
				}
				fmt.Fprintf(w, "%s\t%s\n", repo.FullName, visibility)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			logins := make([]string, len(octx.Assignees))
			for i, assignee := range octx.Assignees {
				logins[i] = assignee.Login
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nAssignable: %s\n", strings.Join(logins, ", "))

			app.updateSnapshot(func(s *service.Snapshot) {
				s.SetRepositories(owner.Qualifier(), octx.Repositories)
				s.SetAssignees(owner.Qualifier(), octx.Assignees)
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asUser, "user", false, "treat the owner as a user account instead of an organization")

	return cmd
}

// resolveOwner decides whether a login names the authenticated user or an
// organization. The --user flag forces the user kind; otherwise the login is
// compared against the authenticated identity.
func resolveOwner(cmd *cobra.Command, app *App, login string, asUser bool) (domain.Owner, error) {
	if asUser {
		return domain.Owner{Login: login, Kind: domain.KindUser}, nil
	}

	user, _, err := app.Service.Owners(cmd.Context())
	if err != nil {
		return domain.Owner{}, err
	}

	if strings.EqualFold(user.Login, login) {
		return user.AsOwner(), nil
	}
	return domain.Owner{Login: login, Kind: domain.KindOrganization}, nil
}
