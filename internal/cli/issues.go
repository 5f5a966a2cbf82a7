package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/forge"
)

func newIssuesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Search, create, import, or edit issues",
	}

	cmd.AddCommand(
		newIssuesSearchCommand(app),
		newIssuesCreateCommand(app),
		newIssuesImportCommand(app),
		newIssuesEditCommand(app),
	)
	return cmd
}

func newIssuesSearchCommand(app *App) *cobra.Command {
	var repo string
	var owner string
	var org bool
	var assignees []string
	var labels []string
	var milestone string
	var state string
	var sort string
	var page int

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search issues, one result page at a time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.IssueFilter{
				Repository: repo,
				Assignees:  assignees,
				Labels:     labels,
				Milestone:  milestone,
				State:      state,
				Sort:       sort,
			}
			if len(args) == 1 {
				filter.Keyword = args[0]
			}
			if owner != "" {
				kind := domain.KindUser
				if org {
					kind = domain.KindOrganization
				}
				filter.Owner = &domain.Owner{Login: owner, Kind: kind}
			}

			result, err := app.Service.Search(cmd.Context(), filter, page)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tSTATE\tTITLE\tURL")
			for _, issue := range result.Issues {
				fmt.Fprintf(w, "#%d\t%s\t%s\t%s\n", issue.Number, issue.State, issue.Title, issue.HTMLURL)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d\n", result.Page, result.TotalPages)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "limit to a repository (owner/name)")
	cmd.Flags().StringVar(&owner, "owner", "", "limit to an owner")
	cmd.Flags().BoolVar(&org, "org", false, "the --owner is an organization")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "filter by assignee (repeatable)")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "filter by label (repeatable)")
	cmd.Flags().StringVar(&milestone, "milestone", "", "filter by milestone title")
	cmd.Flags().StringVar(&state, "state", "open", "issue state: open, closed, or empty for both")
	cmd.Flags().StringVar(&sort, "sort", "created-desc", "sort order, e.g. created-desc, comments-asc")
	cmd.Flags().IntVar(&page, "page", 1, "result page to show")

	return cmd
}

func newIssuesCreateCommand(app *App) *cobra.Command {
	var title string
	var body string
	var assignees []string
	var labels []string
	var milestone int

	cmd := &cobra.Command{
		Use:   "create <owner/repo>",
		Short: "Create a single issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := domain.IssueDraft{
				Title:     title,
				Body:      body,
				Assignees: assignees,
				Labels:    labels,
				Milestone: milestone,
			}

			created, err := app.Service.BulkCreate(cmd.Context(), args[0], []domain.IssueDraft{draft})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created issue #%d: %s\n", created[0].Number, created[0].HTMLURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "issue title")
	cmd.Flags().StringVar(&body, "body", "", "issue body")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "assignee login (repeatable)")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "label name (repeatable)")
	cmd.Flags().IntVar(&milestone, "milestone", 0, "milestone number")

	return cmd
}

func newIssuesImportCommand(app *App) *cobra.Command {
	var file string
	var format string
	var delimiter string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <owner/repo>",
		Short: "Bulk-create issues from a CSV or JSON file",
		Long: `Bulk-create issues from a file. CSV records use column 0 as the title
and column 1 as the body; quoted fields may contain the delimiter. JSON
input must be an array of {"title", "body", ...} objects.

Every record is validated before the first issue is created. If a request
fails mid-batch, the issues already created stay on the server; re-running
the import without removing them creates duplicates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			var drafts []domain.IssueDraft
			switch resolveFormat(format, file) {
			case "json":
				drafts, err = app.Service.ImportJSON(data)
				if err != nil {
					return err
				}
			case "csv":
				drafts = app.Service.ImportDelimited(string(data), delimiter)
			default:
				return fmt.Errorf("unknown import format %q (want csv or json)", format)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "Parsed %d drafts from %s:\n", len(drafts), file)
				for _, draft := range drafts {
					fmt.Fprintf(out, "  - %s\n", draft.Title)
				}
				return nil
			}

			created, err := app.Service.BulkCreate(cmd.Context(), args[0], drafts)
			if err != nil {
				return err
			}

			for _, issue := range created {
				fmt.Fprintf(out, "Created issue #%d: %s\n", issue.Number, issue.HTMLURL)
			}
			fmt.Fprintf(out, "Created %d issue(s) in %s\n", len(created), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "file to import (required)")
	cmd.Flags().StringVar(&format, "format", "", "import format: csv or json (default: from file extension)")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "field delimiter for csv input")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and list drafts without creating anything")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newIssuesEditCommand(app *App) *cobra.Command {
	var title string
	var body string
	var state string

	cmd := &cobra.Command{
		Use:   "edit <owner/repo> <number>",
		Short: "Edit an existing issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid issue number %q", args[1])
			}

			var patch domain.IssuePatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("body") {
				patch.Body = &body
			}
			if cmd.Flags().Changed("state") {
				patch.State = &state
			}

			updated, err := app.Service.Update(cmd.Context(), args[0], number, patch)
			if err != nil {
				var notFound *forge.NotFoundError
				if errors.As(err, &notFound) {
					return fmt.Errorf("issue %s#%d no longer exists; refresh your search results", args[0], number)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated issue #%d: %s\n", updated.Number, updated.HTMLURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	cmd.Flags().StringVar(&state, "state", "", "new state: open or closed")

	return cmd
}

// resolveFormat picks the import format from the flag, falling back to the
// file extension.
func resolveFormat(format, file string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return "json"
	}
	return "csv"
}
