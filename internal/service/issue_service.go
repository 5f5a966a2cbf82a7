package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/forge"
	"github.com/ghbulk/ghbulk/internal/importer"
)

// IssueService orchestrates the forge client for the command surface:
// owner/repository metadata fan-out, import parsing, and bulk creation.
type IssueService struct {
	client forge.Client
	logger Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(client forge.Client, logger Logger) *IssueService {
	return &IssueService{
		client: client,
		logger: logger,
	}
}

// OwnerContext holds the metadata an issue form needs for one owner.
type OwnerContext struct {
	Owner        domain.Owner
	Repositories []domain.Repository
	Assignees    []domain.Assignee
}

// RepositoryContext holds the metadata an issue form needs for one repository.
type RepositoryContext struct {
	Repository string
	Labels     []domain.Label
	Milestones []domain.Milestone
}

// Owners returns the authenticated user followed by every organization the
// user belongs to, i.e. all accounts issues can be filed under.
func (s *IssueService) Owners(ctx context.Context) (domain.User, []domain.Owner, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	orgs, err := s.client.Organizations(ctx)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	owners := make([]domain.Owner, 0, len(orgs)+1)
	owners = append(owners, user.AsOwner())
	owners = append(owners, orgs...)

	s.logger.Printf("Resolved %s with %d organizations", user.Login, len(orgs))
	return user, owners, nil
}

// OwnerContext fetches the repositories and assignees of an owner
// concurrently and joins all-or-nothing: if either branch fails the whole
// call fails, though the completed branch's requests are not undone. For a
// user-kind owner the only assignee is the authenticated user themself, so no
// member listing is issued.
func (s *IssueService) OwnerContext(ctx context.Context, owner domain.Owner) (OwnerContext, error) {
	result := OwnerContext{Owner: owner}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()

		repos, err := s.client.Repositories(ctx, owner)
		if err != nil {
			errChan <- fmt.Errorf("repositories: %w", err)
			return
		}
		result.Repositories = repos
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		assignees, err := s.assigneesFor(ctx, owner)
		if err != nil {
			errChan <- fmt.Errorf("assignees: %w", err)
			return
		}
		result.Assignees = assignees
	}()

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return OwnerContext{}, <-errChan
	}

	s.logger.Printf("Owner %s: %d repositories, %d assignees", owner.Login, len(result.Repositories), len(result.Assignees))
	return result, nil
}

// RepositoryContext fetches the labels and milestones of a repository
// concurrently, same join semantics as OwnerContext.
func (s *IssueService) RepositoryContext(ctx context.Context, repo string) (RepositoryContext, error) {
	result := RepositoryContext{Repository: repo}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()

		labels, err := s.client.Labels(ctx, repo)
		if err != nil {
			errChan <- fmt.Errorf("labels: %w", err)
			return
		}
		result.Labels = labels
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		milestones, err := s.client.Milestones(ctx, repo)
		if err != nil {
			errChan <- fmt.Errorf("milestones: %w", err)
			return
		}
		result.Milestones = milestones
	}()

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return RepositoryContext{}, <-errChan
	}

	return result, nil
}

// ImportDelimited parses a delimited text blob into issue drafts. Records
// where both title and body are empty are dropped here, not in the parser.
func (s *IssueService) ImportDelimited(text, delimiter string) []domain.IssueDraft {
	all := importer.DraftsFromRecords(importer.Parse(text, delimiter))

	drafts := make([]domain.IssueDraft, 0, len(all))
	for _, draft := range all {
		if draft.Title == "" && draft.Body == "" {
			continue
		}
		drafts = append(drafts, draft)
	}

	s.logger.Printf("Imported %d drafts from delimited text (%d records)", len(drafts), len(all))
	return drafts
}

// ImportJSON parses a JSON array into issue drafts.
func (s *IssueService) ImportJSON(data []byte) ([]domain.IssueDraft, error) {
	drafts, err := importer.ParseJSON(data)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Imported %d drafts from JSON", len(drafts))
	return drafts, nil
}

// BulkCreate creates one issue per draft in the repository. Validation and
// partial-failure semantics are the client's: drafts are checked before any
// request and issues created before a failure stay created.
func (s *IssueService) BulkCreate(ctx context.Context, repo string, drafts []domain.IssueDraft) ([]domain.Issue, error) {
	created, err := s.client.CreateIssues(ctx, repo, drafts)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Created %d issues in %s", len(created), repo)
	return created, nil
}

// Search runs one page of an issue search.
func (s *IssueService) Search(ctx context.Context, filter domain.IssueFilter, page int) (forge.IssueSearchPage, error) {
	return s.client.SearchIssues(ctx, filter, page)
}

// Update applies a partial update to one issue.
func (s *IssueService) Update(ctx context.Context, repo string, number int, patch domain.IssuePatch) (domain.Issue, error) {
	return s.client.UpdateIssue(ctx, repo, number, patch)
}

// CreateLabels creates one label per entry in the repository.
func (s *IssueService) CreateLabels(ctx context.Context, repo string, labels []domain.Label) ([]domain.Label, error) {
	created, err := s.client.CreateLabels(ctx, repo, labels)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Created %d labels in %s", len(created), repo)
	return created, nil
}

// CreateMilestones creates one milestone per entry in the repository.
func (s *IssueService) CreateMilestones(ctx context.Context, repo string, milestones []domain.Milestone) ([]domain.Milestone, error) {
	created, err := s.client.CreateMilestones(ctx, repo, milestones)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Created %d milestones in %s", len(created), repo)
	return created, nil
}

// UpdateMilestone updates one milestone in the repository.
func (s *IssueService) UpdateMilestone(ctx context.Context, repo string, milestone domain.Milestone) (domain.Milestone, error) {
	return s.client.UpdateMilestone(ctx, repo, milestone)
}

// assigneesFor lists the assignable accounts for an owner.
func (s *IssueService) assigneesFor(ctx context.Context, owner domain.Owner) ([]domain.Assignee, error) {
	if owner.Kind == domain.KindOrganization {
		return s.client.Members(ctx, owner.Login)
	}

	// Personal repositories: only the account holder can be assigned.
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(user.Login, owner.Login) {
		return nil, fmt.Errorf("owner %s is not the authenticated user %s", owner.Login, user.Login)
	}

	return []domain.Assignee{{Login: user.Login, Org: owner.Login, AvatarURL: user.AvatarURL}}, nil
}
