// Package github implements the forge client against the GitHub REST API v3.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/forge"
)

// DefaultBaseURL is used when the configuration leaves the API URL empty.
const DefaultBaseURL = "https://api.github.com"

// Client talks to the GitHub REST API. It implements forge.Client.
// All requests carry the configured token; the client holds no other state,
// so a single instance is safe for concurrent use.
type Client struct {
	*forge.BaseClient
	perPage int
}

// NewClient creates a new GitHub client.
// Uses dependency injection for HTTPClient (allows mocking in tests).
func NewClient(config forge.ClientConfig, httpClient forge.HTTPClient) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	perPage := config.PageSize
	if perPage <= 0 {
		perPage = forge.DefaultPageSize
	}

	return &Client{
		BaseClient: forge.NewBaseClient(baseURL, config.Token, httpClient),
		perPage:    perPage,
	}
}

// CurrentUser retrieves the identity behind the configured token.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var ghUser githubUser
	if err := c.get(ctx, "/user", nil, &ghUser); err != nil {
		return domain.User{}, fmt.Errorf("failed to get current user: %w", err)
	}

	return ghUser.toUser(), nil
}

// Organizations retrieves every organization the identity belongs to.
func (c *Client) Organizations(ctx context.Context) ([]domain.Owner, error) {
	ghOrgs, err := collectSizePaged(ctx, c.perPage, func(ctx context.Context, page int) ([]githubOrg, error) {
		var items []githubOrg
		err := c.get(ctx, "/user/orgs", c.pageQuery(page), &items)
		return items, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	owners := make([]domain.Owner, len(ghOrgs))
	for i, org := range ghOrgs {
		owners[i] = domain.Owner{
			Login:     org.Login,
			Kind:      domain.KindOrganization,
			AvatarURL: org.AvatarURL,
		}
	}
	return owners, nil
}

// Repositories retrieves every repository held by the owner via the
// repository search endpoint, which reports a total count per page.
func (c *Client) Repositories(ctx context.Context, owner domain.Owner) ([]domain.Repository, error) {
	if owner.Login == "" {
		return nil, &domain.ValidationError{Violations: []string{"owner login must not be empty"}}
	}

	ghRepos, err := collectCountPaged(ctx, func(ctx context.Context, page int) (searchPage[githubRepository], error) {
		query := c.pageQuery(page)
		query.Set("q", owner.Qualifier())

		var resp searchPage[githubRepository]
		err := c.get(ctx, "/search/repositories", query, &resp)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", owner.Login, err)
	}

	repos := make([]domain.Repository, len(ghRepos))
	for i, repo := range ghRepos {
		repos[i] = domain.Repository{
			FullName: repo.FullName,
			Name:     repo.Name,
			Owner:    owner,
			Private:  repo.Private,
			HTMLURL:  repo.HTMLURL,
		}
	}
	return repos, nil
}

// Members retrieves the assignable members of an organization.
func (c *Client) Members(ctx context.Context, org string) ([]domain.Assignee, error) {
	if org == "" {
		return nil, &domain.ValidationError{Violations: []string{"organization must not be empty"}}
	}

	ghMembers, err := collectSizePaged(ctx, c.perPage, func(ctx context.Context, page int) ([]githubUser, error) {
		var items []githubUser
		err := c.get(ctx, fmt.Sprintf("/orgs/%s/members", org), c.pageQuery(page), &items)
		return items, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", org, err)
	}

	assignees := make([]domain.Assignee, len(ghMembers))
	for i, member := range ghMembers {
		assignees[i] = domain.Assignee{
			Login:     member.Login,
			Org:       org,
			AvatarURL: member.AvatarURL,
		}
	}
	return assignees, nil
}

// Labels retrieves every label of a repository.
func (c *Client) Labels(ctx context.Context, repo string) ([]domain.Label, error) {
	if repo == "" {
		return nil, &domain.ValidationError{Violations: []string{"repository must not be empty"}}
	}

	ghLabels, err := collectSizePaged(ctx, c.perPage, func(ctx context.Context, page int) ([]githubLabel, error) {
		var items []githubLabel
		err := c.get(ctx, fmt.Sprintf("/repos/%s/labels", repo), c.pageQuery(page), &items)
		return items, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels of %s: %w", repo, err)
	}

	labels := make([]domain.Label, len(ghLabels))
	for i, label := range ghLabels {
		labels[i] = label.toLabel(repo)
	}
	return labels, nil
}

// Milestones retrieves every milestone of a repository.
func (c *Client) Milestones(ctx context.Context, repo string) ([]domain.Milestone, error) {
	if repo == "" {
		return nil, &domain.ValidationError{Violations: []string{"repository must not be empty"}}
	}

	ghMilestones, err := collectSizePaged(ctx, c.perPage, func(ctx context.Context, page int) ([]githubMilestone, error) {
		var items []githubMilestone
		err := c.get(ctx, fmt.Sprintf("/repos/%s/milestones", repo), c.pageQuery(page), &items)
		return items, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones of %s: %w", repo, err)
	}

	milestones := make([]domain.Milestone, len(ghMilestones))
	for i, milestone := range ghMilestones {
		milestones[i] = milestone.toMilestone(repo)
	}
	return milestones, nil
}

// SearchIssues runs an issue search and returns one result page. The total
// page count comes from the Link response header, since the search endpoint
// does not report it in the body.
func (c *Client) SearchIssues(ctx context.Context, filter domain.IssueFilter, page int) (forge.IssueSearchPage, error) {
	if page < 1 {
		page = 1
	}

	query := c.pageQuery(page)
	query.Set("q", filter.Query())

	var resp searchPage[githubIssue]
	header, err := c.do(ctx, http.MethodGet, "/search/issues", query, nil, &resp)
	if err != nil {
		return forge.IssueSearchPage{}, fmt.Errorf("failed to search issues: %w", err)
	}

	issues := make([]domain.Issue, len(resp.Items))
	for i, issue := range resp.Items {
		issues[i] = issue.toIssue()
	}

	return forge.IssueSearchPage{
		Issues:     issues,
		Page:       page,
		TotalPages: totalPagesFromLink(header.Get("Link")),
	}, nil
}

// CreateIssues creates one issue per draft. Every draft is validated before
// the first request goes out; a validation failure reports all violations at
// once and performs no network call. Requests run concurrently under the
// client semaphore and the result order matches the draft order. When one
// request fails the others are not rolled back: issues already created stay
// on the server and reconciling them is the caller's responsibility.
func (c *Client) CreateIssues(ctx context.Context, repo string, drafts []domain.IssueDraft) ([]domain.Issue, error) {
	var violations []string

	if repo == "" {
		violations = append(violations, "repository must not be empty")
	}

	if len(drafts) == 0 {
		violations = append(violations, "no issue entries")
	} else {
		for _, draft := range drafts {
			if draft.Title == "" {
				violations = append(violations, "issue title must not be empty")
				break
			}
		}
		for _, draft := range drafts {
			if draft.Body == "" {
				violations = append(violations, "issue body must not be empty")
				break
			}
		}
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	ghIssues, err := createEach[domain.IssueDraft, githubIssue](ctx, c, fmt.Sprintf("/repos/%s/issues", repo), drafts)
	if err != nil {
		return nil, fmt.Errorf("failed to create issues in %s: %w", repo, err)
	}

	issues := make([]domain.Issue, len(ghIssues))
	for i, issue := range ghIssues {
		issues[i] = issue.toIssue()
	}
	return issues, nil
}

// UpdateIssue applies a partial update to one issue.
func (c *Client) UpdateIssue(ctx context.Context, repo string, number int, patch domain.IssuePatch) (domain.Issue, error) {
	var violations []string
	if repo == "" {
		violations = append(violations, "repository must not be empty")
	}
	if number < 1 {
		violations = append(violations, "issue number must be positive")
	}
	if len(violations) > 0 {
		return domain.Issue{}, &domain.ValidationError{Violations: violations}
	}

	var ghIssue githubIssue
	path := fmt.Sprintf("/repos/%s/issues/%d", repo, number)
	if _, err := c.do(ctx, http.MethodPatch, path, nil, patch, &ghIssue); err != nil {
		return domain.Issue{}, fmt.Errorf("failed to update issue %s#%d: %w", repo, number, err)
	}

	return ghIssue.toIssue(), nil
}

// CreateLabels creates one label per entry, batch-validated up front.
func (c *Client) CreateLabels(ctx context.Context, repo string, labels []domain.Label) ([]domain.Label, error) {
	var violations []string
	if repo == "" {
		violations = append(violations, "repository must not be empty")
	}
	if len(labels) == 0 {
		violations = append(violations, "no label entries")
	} else {
		for _, label := range labels {
			if label.Name == "" {
				violations = append(violations, "label name must not be empty")
				break
			}
		}
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	bodies := make([]labelRequest, len(labels))
	for i, label := range labels {
		bodies[i] = labelRequest{Name: label.Name, Color: label.Color, Description: label.Description}
	}

	ghLabels, err := createEach[labelRequest, githubLabel](ctx, c, fmt.Sprintf("/repos/%s/labels", repo), bodies)
	if err != nil {
		return nil, fmt.Errorf("failed to create labels in %s: %w", repo, err)
	}

	created := make([]domain.Label, len(ghLabels))
	for i, label := range ghLabels {
		created[i] = label.toLabel(repo)
	}
	return created, nil
}

// CreateMilestones creates one milestone per entry, batch-validated up front.
func (c *Client) CreateMilestones(ctx context.Context, repo string, milestones []domain.Milestone) ([]domain.Milestone, error) {
	var violations []string
	if repo == "" {
		violations = append(violations, "repository must not be empty")
	}
	if len(milestones) == 0 {
		violations = append(violations, "no milestone entries")
	} else {
		for _, milestone := range milestones {
			if milestone.Title == "" {
				violations = append(violations, "milestone title must not be empty")
				break
			}
		}
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	bodies := make([]milestoneRequest, len(milestones))
	for i, milestone := range milestones {
		bodies[i] = milestoneRequest{Title: milestone.Title, State: milestone.State, DueOn: milestone.DueOn}
	}

	ghMilestones, err := createEach[milestoneRequest, githubMilestone](ctx, c, fmt.Sprintf("/repos/%s/milestones", repo), bodies)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestones in %s: %w", repo, err)
	}

	created := make([]domain.Milestone, len(ghMilestones))
	for i, milestone := range ghMilestones {
		created[i] = milestone.toMilestone(repo)
	}
	return created, nil
}

// UpdateMilestone updates one milestone, identified by its number.
func (c *Client) UpdateMilestone(ctx context.Context, repo string, milestone domain.Milestone) (domain.Milestone, error) {
	var violations []string
	if repo == "" {
		violations = append(violations, "repository must not be empty")
	}
	if milestone.Number < 1 {
		violations = append(violations, "milestone number must be positive")
	}
	if len(violations) > 0 {
		return domain.Milestone{}, &domain.ValidationError{Violations: violations}
	}

	body := milestoneRequest{Title: milestone.Title, State: milestone.State, DueOn: milestone.DueOn}

	var ghMilestone githubMilestone
	path := fmt.Sprintf("/repos/%s/milestones/%d", repo, milestone.Number)
	if _, err := c.do(ctx, http.MethodPatch, path, nil, body, &ghMilestone); err != nil {
		return domain.Milestone{}, fmt.Errorf("failed to update milestone %s#%d: %w", repo, milestone.Number, err)
	}

	return ghMilestone.toMilestone(repo), nil
}

// createEach POSTs one body per entry to the same collection endpoint. The
// requests are independent: they run concurrently under the client semaphore,
// results land at the index of their input, and the first failure is
// returned. Entries that were already accepted by the server stay created.
func createEach[B, R any](ctx context.Context, c *Client, path string, bodies []B) ([]R, error) {
	results := make([]R, len(bodies))
	var wg sync.WaitGroup
	errChan := make(chan error, len(bodies))

	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body B) {
			defer wg.Done()

			err := c.DoRateLimited(ctx, func() error {
				var result R
				if _, err := c.do(ctx, http.MethodPost, path, nil, body, &result); err != nil {
					return err
				}
				results[i] = result
				return nil
			})
			if err != nil {
				errChan <- err
			}
		}(i, body)
	}

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return nil, <-errChan
	}

	return results, nil
}

// pageQuery builds the pagination parameters for one page.
func (c *Client) pageQuery(page int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(c.perPage))
	return query
}

// get performs a GET request, discarding the response headers.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, result)
	return err
}

// do performs an HTTP request against the API and decodes the JSON response
// into result. Non-2xx responses are classified into the typed forge errors;
// transport failures come back as a RequestError with no status.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, result any) (http.Header, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &forge.RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		return nil, forge.ClassifyResponse(resp, data)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

// GitHub API response and request types

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

func (u githubUser) toUser() domain.User {
	return domain.User{
		Login:     u.Login,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		HTMLURL:   u.HTMLURL,
	}
}

type githubOrg struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type githubRepository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
}

type githubLabel struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func (l githubLabel) toLabel(repo string) domain.Label {
	return domain.Label{
		Name:        l.Name,
		Color:       l.Color,
		Description: l.Description,
		Repository:  repo,
	}
}

type labelRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type githubMilestone struct {
	Number int        `json:"number"`
	Title  string     `json:"title"`
	State  string     `json:"state"`
	DueOn  *time.Time `json:"due_on"`
}

func (m githubMilestone) toMilestone(repo string) domain.Milestone {
	return domain.Milestone{
		Number:     m.Number,
		Title:      m.Title,
		State:      m.State,
		DueOn:      m.DueOn,
		Repository: repo,
	}
}

type milestoneRequest struct {
	Title string     `json:"title,omitempty"`
	State string     `json:"state,omitempty"`
	DueOn *time.Time `json:"due_on,omitempty"`
}

type githubIssue struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	State     string           `json:"state"`
	Assignees []githubUser     `json:"assignees"`
	Labels    []githubLabel    `json:"labels"`
	Milestone *githubMilestone `json:"milestone"`
	HTMLURL   string           `json:"html_url"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (i githubIssue) toIssue() domain.Issue {
	assignees := make([]string, len(i.Assignees))
	for n, assignee := range i.Assignees {
		assignees[n] = assignee.Login
	}

	labels := make([]string, len(i.Labels))
	for n, label := range i.Labels {
		labels[n] = label.Name
	}

	milestone := 0
	if i.Milestone != nil {
		milestone = i.Milestone.Number
	}

	return domain.Issue{
		Number:    i.Number,
		Title:     i.Title,
		Body:      i.Body,
		State:     i.State,
		Assignees: assignees,
		Labels:    labels,
		Milestone: milestone,
		HTMLURL:   i.HTMLURL,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
