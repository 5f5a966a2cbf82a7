package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/forge"
)

// fakeClient implements forge.Client with canned data and per-method error
// overrides.
type fakeClient struct {
	user         domain.User
	orgs         []domain.Owner
	repos        map[string][]domain.Repository
	members      map[string][]domain.Assignee
	labels       map[string][]domain.Label
	milestones   map[string][]domain.Milestone
	failures     map[string]error
	createdIn    string
	createDrafts []domain.IssueDraft
}

func (f *fakeClient) CurrentUser(_ context.Context) (domain.User, error) {
	if err := f.failures["CurrentUser"]; err != nil {
		return domain.User{}, err
	}
	return f.user, nil
}

func (f *fakeClient) Organizations(_ context.Context) ([]domain.Owner, error) {
	if err := f.failures["Organizations"]; err != nil {
		return nil, err
	}
	return f.orgs, nil
}

func (f *fakeClient) Repositories(_ context.Context, owner domain.Owner) ([]domain.Repository, error) {
	if err := f.failures["Repositories"]; err != nil {
		return nil, err
	}
	return f.repos[owner.Qualifier()], nil
}

func (f *fakeClient) Members(_ context.Context, org string) ([]domain.Assignee, error) {
	if err := f.failures["Members"]; err != nil {
		return nil, err
	}
	return f.members[org], nil
}

func (f *fakeClient) Labels(_ context.Context, repo string) ([]domain.Label, error) {
	if err := f.failures["Labels"]; err != nil {
		return nil, err
	}
	return f.labels[repo], nil
}

func (f *fakeClient) Milestones(_ context.Context, repo string) ([]domain.Milestone, error) {
	if err := f.failures["Milestones"]; err != nil {
		return nil, err
	}
	return f.milestones[repo], nil
}

func (f *fakeClient) SearchIssues(_ context.Context, _ domain.IssueFilter, page int) (forge.IssueSearchPage, error) {
	return forge.IssueSearchPage{Page: page, TotalPages: 1}, nil
}

func (f *fakeClient) CreateIssues(_ context.Context, repo string, drafts []domain.IssueDraft) ([]domain.Issue, error) {
	if err := f.failures["CreateIssues"]; err != nil {
		return nil, err
	}
	f.createdIn = repo
	f.createDrafts = drafts

	issues := make([]domain.Issue, len(drafts))
	for i, draft := range drafts {
		issues[i] = domain.Issue{Number: i + 1, Title: draft.Title, Body: draft.Body, State: "open"}
	}
	return issues, nil
}

func (f *fakeClient) UpdateIssue(_ context.Context, _ string, number int, _ domain.IssuePatch) (domain.Issue, error) {
	return domain.Issue{Number: number}, nil
}

func (f *fakeClient) CreateLabels(_ context.Context, _ string, labels []domain.Label) ([]domain.Label, error) {
	return labels, nil
}

func (f *fakeClient) CreateMilestones(_ context.Context, _ string, milestones []domain.Milestone) ([]domain.Milestone, error) {
	return milestones, nil
}

func (f *fakeClient) UpdateMilestone(_ context.Context, _ string, milestone domain.Milestone) (domain.Milestone, error) {
	return milestone, nil
}

func newTestService(client forge.Client) *IssueService {
	return NewIssueService(client, NopLogger{})
}

func TestOwners_UserComesFirst(t *testing.T) {
	client := &fakeClient{
		user: domain.User{Login: "alice"},
		orgs: []domain.Owner{
			{Login: "acme", Kind: domain.KindOrganization},
			{Login: "widgets", Kind: domain.KindOrganization},
		},
	}

	user, owners, err := newTestService(client).Owners(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	require.Len(t, owners, 3)
	assert.Equal(t, domain.Owner{Login: "alice", Kind: domain.KindUser}, owners[0])
	assert.Equal(t, "acme", owners[1].Login)
}

func TestOwnerContext_OrganizationAssigneesComeFromMembers(t *testing.T) {
	owner := domain.Owner{Login: "acme", Kind: domain.KindOrganization}
	client := &fakeClient{
		repos: map[string][]domain.Repository{
			"org:acme": {{FullName: "acme/api"}, {FullName: "acme/web"}},
		},
		members: map[string][]domain.Assignee{
			"acme": {{Login: "alice", Org: "acme"}, {Login: "bob", Org: "acme"}},
		},
	}

	result, err := newTestService(client).OwnerContext(context.Background(), owner)

	require.NoError(t, err)
	assert.Len(t, result.Repositories, 2)
	require.Len(t, result.Assignees, 2)
	assert.Equal(t, "bob", result.Assignees[1].Login)
}

func TestOwnerContext_UserOwnerAssignsOnlyThemself(t *testing.T) {
	owner := domain.Owner{Login: "Alice", Kind: domain.KindUser}
	client := &fakeClient{
		user: domain.User{Login: "alice", AvatarURL: "https://forge.test/alice.png"},
		repos: map[string][]domain.Repository{
			"user:Alice": {{FullName: "alice/notes"}},
		},
		// Members must not be consulted for a user-kind owner.
		failures: map[string]error{"Members": errors.New("members listed for a user owner")},
	}

	result, err := newTestService(client).OwnerContext(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, result.Assignees, 1)
	assert.Equal(t, "alice", result.Assignees[0].Login)
	assert.Equal(t, "Alice", result.Assignees[0].Org)
	assert.Equal(t, "https://forge.test/alice.png", result.Assignees[0].AvatarURL)
}

func TestOwnerContext_ForeignUserOwnerFails(t *testing.T) {
	owner := domain.Owner{Login: "mallory", Kind: domain.KindUser}
	client := &fakeClient{user: domain.User{Login: "alice"}}

	_, err := newTestService(client).OwnerContext(context.Background(), owner)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not the authenticated user")
}

func TestOwnerContext_BranchFailureFailsTheCall(t *testing.T) {
	owner := domain.Owner{Login: "acme", Kind: domain.KindOrganization}
	client := &fakeClient{
		members:  map[string][]domain.Assignee{"acme": {{Login: "alice"}}},
		failures: map[string]error{"Repositories": errors.New("boom")},
	}

	result, err := newTestService(client).OwnerContext(context.Background(), owner)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repositories")
	assert.Empty(t, result.Assignees)
}

func TestRepositoryContext_JoinsLabelsAndMilestones(t *testing.T) {
	client := &fakeClient{
		labels: map[string][]domain.Label{
			"acme/api": {{Name: "bug"}, {Name: "feature"}},
		},
		milestones: map[string][]domain.Milestone{
			"acme/api": {{Number: 1, Title: "v1.0"}},
		},
	}

	result, err := newTestService(client).RepositoryContext(context.Background(), "acme/api")

	require.NoError(t, err)
	assert.Equal(t, "acme/api", result.Repository)
	assert.Len(t, result.Labels, 2)
	assert.Len(t, result.Milestones, 1)
}

func TestRepositoryContext_MilestoneFailureFailsTheCall(t *testing.T) {
	client := &fakeClient{
		labels:   map[string][]domain.Label{"acme/api": {{Name: "bug"}}},
		failures: map[string]error{"Milestones": errors.New("boom")},
	}

	_, err := newTestService(client).RepositoryContext(context.Background(), "acme/api")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "milestones")
}

func TestImportDelimited_DropsEmptyRecords(t *testing.T) {
	service := newTestService(&fakeClient{})

	drafts := service.ImportDelimited("first,body one\n\nsecond,body two\n", ",")

	require.Len(t, drafts, 2)
	assert.Equal(t, "first", drafts[0].Title)
	assert.Equal(t, "body two", drafts[1].Body)
}

func TestImportDelimited_KeepsBodylessRecords(t *testing.T) {
	service := newTestService(&fakeClient{})

	drafts := service.ImportDelimited("only a title", ",")

	require.Len(t, drafts, 1)
	assert.Equal(t, "only a title", drafts[0].Title)
	assert.Empty(t, drafts[0].Body)
}

func TestImportJSON_PropagatesValidation(t *testing.T) {
	var verr *domain.ValidationError
	service := newTestService(&fakeClient{})

	_, err := service.ImportJSON([]byte(`{"title": "x"}`))

	require.ErrorAs(t, err, &verr)
}

func TestBulkCreate_PassesDraftsThrough(t *testing.T) {
	client := &fakeClient{}
	drafts := []domain.IssueDraft{
		{Title: "first", Body: "b1"},
		{Title: "second", Body: "b2"},
	}

	created, err := newTestService(client).BulkCreate(context.Background(), "acme/api", drafts)

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "acme/api", client.createdIn)
	assert.Equal(t, drafts, client.createDrafts)
	assert.Equal(t, 1, created[0].Number)
}

func TestBulkCreate_ClientErrorIsReturned(t *testing.T) {
	client := &fakeClient{failures: map[string]error{"CreateIssues": errors.New("boom")}}

	_, err := newTestService(client).BulkCreate(context.Background(), "acme/api", nil)

	require.Error(t, err)
}
