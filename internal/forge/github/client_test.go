package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghbulk/ghbulk/internal/domain"
	"github.com/ghbulk/ghbulk/internal/forge"
)

// mockHTTPClient is a test double for forge.HTTPClient. It records every
// request (and its body) and delegates to handler.
type mockHTTPClient struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	handler  func(req *http.Request, body string) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	return m.handler(req, body)
}

func (m *mockHTTPClient) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(mock *mockHTTPClient) *Client {
	return NewClient(forge.ClientConfig{
		BaseURL: "https://forge.test",
		Token:   "test-token",
	}, mock)
}

// orgsJSON builds a page of organization objects org<start>..org<start+count-1>.
func orgsJSON(start, count int) string {
	items := make([]string, count)
	for i := 0; i < count; i++ {
		items[i] = fmt.Sprintf(`{"login":"org%d"}`, start+i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestOrganizations_PaginatesUntilShortPage(t *testing.T) {
	// 30 orgs on page 1, 5 on page 2: the short page ends the walk.
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			assert.Equal(t, "token test-token", req.Header.Get("Authorization"))
			assert.Equal(t, "30", req.URL.Query().Get("per_page"))

			switch req.URL.Query().Get("page") {
			case "1":
				return jsonResponse(http.StatusOK, orgsJSON(1, 30)), nil
			case "2":
				return jsonResponse(http.StatusOK, orgsJSON(31, 5)), nil
			default:
				t.Fatalf("unexpected page %q", req.URL.Query().Get("page"))
				return nil, nil
			}
		},
	}

	owners, err := newTestClient(mock).Organizations(context.Background())

	require.NoError(t, err)
	require.Len(t, owners, 35)
	assert.Equal(t, 2, mock.requestCount())
	// server order preserved across pages
	assert.Equal(t, "org1", owners[0].Login)
	assert.Equal(t, "org30", owners[29].Login)
	assert.Equal(t, "org35", owners[34].Login)
	assert.Equal(t, domain.KindOrganization, owners[0].Kind)
}

func TestOrganizations_ExactMultipleCostsTrailingEmptyPage(t *testing.T) {
	// Exactly 30 orgs: page 1 is full, so a second request is issued and
	// returns an empty page.
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			if req.URL.Query().Get("page") == "1" {
				return jsonResponse(http.StatusOK, orgsJSON(1, 30)), nil
			}
			return jsonResponse(http.StatusOK, `[]`), nil
		},
	}

	owners, err := newTestClient(mock).Organizations(context.Background())

	require.NoError(t, err)
	assert.Len(t, owners, 30)
	assert.Equal(t, 2, mock.requestCount())
}

func TestRepositories_CountBasedPagination(t *testing.T) {
	// Owner "acme" has 35 repositories: two requests, 30 + 5 items.
	repoPage := func(start, count, total int) string {
		items := make([]string, count)
		for i := 0; i < count; i++ {
			items[i] = fmt.Sprintf(`{"name":"repo%d","full_name":"acme/repo%d"}`, start+i, start+i)
		}
		return fmt.Sprintf(`{"total_count":%d,"incomplete_results":false,"items":[%s]}`,
			total, strings.Join(items, ","))
	}

	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			assert.Equal(t, "/search/repositories", req.URL.Path)
			assert.Equal(t, "org:acme", req.URL.Query().Get("q"))

			switch req.URL.Query().Get("page") {
			case "1":
				return jsonResponse(http.StatusOK, repoPage(1, 30, 35)), nil
			case "2":
				return jsonResponse(http.StatusOK, repoPage(31, 5, 35)), nil
			default:
				t.Fatalf("unexpected page %q", req.URL.Query().Get("page"))
				return nil, nil
			}
		},
	}

	owner := domain.Owner{Login: "acme", Kind: domain.KindOrganization}
	repos, err := newTestClient(mock).Repositories(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, repos, 35)
	assert.Equal(t, 2, mock.requestCount())
	assert.Equal(t, "acme/repo1", repos[0].FullName)
	assert.Equal(t, "acme/repo35", repos[34].FullName)
	assert.Equal(t, owner, repos[0].Owner)
}

func TestRepositories_IncompleteResultsStopsEarly(t *testing.T) {
	// The server flags the first page as incomplete: the walk stops with the
	// items accumulated so far even though the total says there are more.
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			require.Equal(t, "1", req.URL.Query().Get("page"))
			return jsonResponse(http.StatusOK,
				`{"total_count":90,"incomplete_results":true,"items":[{"full_name":"acme/one","name":"one"}]}`), nil
		},
	}

	repos, err := newTestClient(mock).Repositories(context.Background(),
		domain.Owner{Login: "acme", Kind: domain.KindOrganization})

	require.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.Equal(t, 1, mock.requestCount())
}

func TestLabels_PageFailureDiscardsAccumulated(t *testing.T) {
	// Page 1 succeeds, page 2 fails: the whole call fails and the first
	// page's items are not returned.
	labelPage := func(count int) string {
		items := make([]string, count)
		for i := range items {
			items[i] = fmt.Sprintf(`{"name":"l%d","color":"ededed"}`, i)
		}
		return "[" + strings.Join(items, ",") + "]"
	}

	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			if req.URL.Query().Get("page") == "1" {
				return jsonResponse(http.StatusOK, labelPage(30)), nil
			}
			return jsonResponse(http.StatusInternalServerError, `{"message":"boom"}`), nil
		},
	}

	labels, err := newTestClient(mock).Labels(context.Background(), "acme/api")

	require.Error(t, err)
	assert.Nil(t, labels)

	var reqErr *forge.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
}

func TestMembers_RefetchIsStructurallyEqual(t *testing.T) {
	// Two identical calls against an unchanged backend yield equal results.
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `[{"login":"alice"},{"login":"bob"}]`), nil
		},
	}
	client := newTestClient(mock)

	first, err := client.Members(context.Background(), "acme")
	require.NoError(t, err)
	second, err := client.Members(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "acme", first[0].Org)
}

func TestMilestones_ScopedToRepository(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			assert.Equal(t, "/repos/acme/api/milestones", req.URL.Path)
			return jsonResponse(http.StatusOK, `[{"number":3,"title":"v1.0","state":"open"}]`), nil
		},
	}

	milestones, err := newTestClient(mock).Milestones(context.Background(), "acme/api")

	require.NoError(t, err)
	require.Len(t, milestones, 1)
	assert.Equal(t, 3, milestones[0].Number)
	assert.Equal(t, "acme/api", milestones[0].Repository)
}

func TestSearchIssues_TotalPagesFromLinkHeader(t *testing.T) {
	resp := jsonResponse(http.StatusOK,
		`{"total_count":95,"incomplete_results":false,"items":[{"number":1,"title":"t","state":"open"}]}`)
	resp.Header.Set("Link",
		`<https://forge.test/search/issues?q=x&page=2>; rel="next", <https://forge.test/search/issues?q=x&page=4>; rel="last"`)

	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			assert.Equal(t, "/search/issues", req.URL.Path)
			assert.Contains(t, req.URL.Query().Get("q"), "type:issue")
			return resp, nil
		},
	}

	page, err := newTestClient(mock).SearchIssues(context.Background(),
		domain.IssueFilter{Repository: "acme/api"}, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Issues, 1)
	assert.Equal(t, 1, page.Issues[0].Number)
}

func TestCreateIssues_ValidatesEveryDraftBeforeAnyRequest(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			t.Fatal("no request should be issued for invalid drafts")
			return nil, nil
		},
	}

	drafts := []domain.IssueDraft{
		{Title: "", Body: "b"},
		{Title: "t", Body: ""},
	}
	issues, err := newTestClient(mock).CreateIssues(context.Background(), "acme/api", drafts)

	require.Error(t, err)
	assert.Nil(t, issues)
	assert.Equal(t, 0, mock.requestCount())

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Violations, "issue title must not be empty")
	assert.Contains(t, validation.Violations, "issue body must not be empty")
	assert.Len(t, validation.Violations, 2)
}

func TestCreateIssues_ResultOrderMatchesInput(t *testing.T) {
	// The POSTs run concurrently; the response echoes the draft title and an
	// issue number derived from it so ordering is observable.
	mock := &mockHTTPClient{
		handler: func(req *http.Request, body string) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/repos/acme/api/issues", req.URL.Path)
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var draft domain.IssueDraft
			require.NoError(t, json.Unmarshal([]byte(body), &draft))
			number, err := strconv.Atoi(strings.TrimPrefix(draft.Title, "issue-"))
			require.NoError(t, err)

			return jsonResponse(http.StatusCreated, fmt.Sprintf(
				`{"number":%d,"title":%q,"body":%q,"state":"open","html_url":"https://forge.test/acme/api/issues/%d"}`,
				number, draft.Title, draft.Body, number)), nil
		},
	}

	drafts := []domain.IssueDraft{
		{Title: "issue-1", Body: "a"},
		{Title: "issue-2", Body: "b"},
		{Title: "issue-3", Body: "c"},
	}
	issues, err := newTestClient(mock).CreateIssues(context.Background(), "acme/api", drafts)

	require.NoError(t, err)
	require.Len(t, issues, 3)
	for i, issue := range issues {
		assert.Equal(t, i+1, issue.Number)
		assert.Equal(t, drafts[i].Title, issue.Title)
	}
	assert.Equal(t, 3, mock.requestCount())
}

func TestCreateIssues_EmptyBatchRejected(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		},
	}

	_, err := newTestClient(mock).CreateIssues(context.Background(), "acme/api", nil)

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Violations, "no issue entries")
}

func TestUpdateIssue_MissingIssueIsNotFound(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			assert.Equal(t, http.MethodPatch, req.Method)
			assert.Equal(t, "/repos/acme/api/issues/7", req.URL.Path)
			resp := jsonResponse(http.StatusGone, `{"message":"gone"}`)
			resp.Request = req
			return resp, nil
		},
	}

	title := "new title"
	_, err := newTestClient(mock).UpdateIssue(context.Background(), "acme/api", 7,
		domain.IssuePatch{Title: &title})

	var notFound *forge.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, http.StatusGone, notFound.StatusCode)
}

func TestCurrentUser_RejectedTokenIsAuthError(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, _ string) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, `{"message":"Bad credentials"}`), nil
		},
	}

	_, err := newTestClient(mock).CurrentUser(context.Background())

	var authErr *forge.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCreateLabels_PostsOnePerLabel(t *testing.T) {
	mock := &mockHTTPClient{
		handler: func(req *http.Request, body string) (*http.Response, error) {
			assert.Equal(t, "/repos/acme/api/labels", req.URL.Path)

			var label labelRequest
			require.NoError(t, json.Unmarshal([]byte(body), &label))
			return jsonResponse(http.StatusCreated, fmt.Sprintf(
				`{"name":%q,"color":%q}`, label.Name, label.Color)), nil
		},
	}

	labels := []domain.Label{
		{Name: "bug", Color: "ee0000"},
		{Name: "docs", Color: "0000ee"},
	}
	created, err := newTestClient(mock).CreateLabels(context.Background(), "acme/api", labels)

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "bug", created[0].Name)
	assert.Equal(t, "docs", created[1].Name)
	assert.Equal(t, "acme/api", created[0].Repository)
	assert.Equal(t, 2, mock.requestCount())
}
