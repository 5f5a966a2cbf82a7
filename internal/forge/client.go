package forge

import (
	"context"
	"net/http"

	"github.com/ghbulk/ghbulk/internal/domain"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds common configuration for forge API clients.
type ClientConfig struct {
	BaseURL  string
	Token    string // bearer credential, sent on every request, never persisted here
	PageSize int    // items per page; 0 selects the client default
}

// IssueSearchPage is one page of issue search results. TotalPages is derived
// from the server's Link response header, so it may lag behind concurrent
// mutation on the server.
type IssueSearchPage struct {
	Issues     []domain.Issue
	Page       int
	TotalPages int
}

// MetadataClient covers the read operations whose results are cacheable:
// the authenticated identity and the owner/repository metadata that issue
// forms are built from.
type MetadataClient interface {
	// CurrentUser returns the identity behind the configured token.
	CurrentUser(ctx context.Context) (domain.User, error)

	// Organizations lists the organizations the identity belongs to.
	Organizations(ctx context.Context) ([]domain.Owner, error)

	// Repositories lists every repository held by the owner.
	Repositories(ctx context.Context, owner domain.Owner) ([]domain.Repository, error)

	// Members lists the assignable members of an organization.
	Members(ctx context.Context, org string) ([]domain.Assignee, error)

	// Labels lists every label of a repository (full name).
	Labels(ctx context.Context, repo string) ([]domain.Label, error)

	// Milestones lists every milestone of a repository (full name).
	Milestones(ctx context.Context, repo string) ([]domain.Milestone, error)
}

// Client is the full forge API surface: cacheable metadata reads plus issue
// search and the write operations.
type Client interface {
	MetadataClient

	// SearchIssues runs an issue search and returns a single result page.
	SearchIssues(ctx context.Context, filter domain.IssueFilter, page int) (IssueSearchPage, error)

	// CreateIssues validates every draft up front and then creates one issue
	// per draft. Result order matches draft order. On a mid-batch failure the
	// issues already created remain on the server; reconciling is the
	// caller's responsibility.
	CreateIssues(ctx context.Context, repo string, drafts []domain.IssueDraft) ([]domain.Issue, error)

	// UpdateIssue applies a partial update to one issue. A missing issue is
	// reported as a NotFoundError so callers can evict stale cache entries.
	UpdateIssue(ctx context.Context, repo string, number int, patch domain.IssuePatch) (domain.Issue, error)

	// CreateLabels creates one label per entry, same batch semantics as
	// CreateIssues.
	CreateLabels(ctx context.Context, repo string, labels []domain.Label) ([]domain.Label, error)

	// CreateMilestones creates one milestone per entry, same batch semantics
	// as CreateIssues.
	CreateMilestones(ctx context.Context, repo string, milestones []domain.Milestone) ([]domain.Milestone, error)

	// UpdateMilestone updates one milestone, identified by its number.
	UpdateMilestone(ctx context.Context, repo string, milestone domain.Milestone) (domain.Milestone, error)
}
