package github

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghtesting "github.com/cexll/ideas-portal/internal/github/testing"
)

func newTestIssues(t *testing.T) (*Issues, *ghtesting.MockGitHub) {
	t.Helper()
	mock := ghtesting.NewMockGitHub()
	t.Cleanup(mock.Close)

	client, err := NewClient(context.Background(), "test-token", mock.URL())
	require.NoError(t, err)
	issues, err := NewIssues(client, ghtesting.Owner+"/"+ghtesting.Repo)
	require.NoError(t, err)
	return issues, mock
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		name      string
		wantError bool
	}{
		{"owner/repo", "owner", "repo", false},
		{" octo/ideas ", "octo", "ideas", false},
		{"", "", "", true},
		{"noslash", "", "", true},
		{"/repo", "", "", true},
		{"owner/", "", "", true},
		{"a/b/c", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, name, err := ParseRepo(tt.in)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRepo))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", client.BaseURL.String())

	client, err = NewClient(context.Background(), "tok", "https://ghe.example.com/api/v3")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.BaseURL.String())

	_, err = NewClient(context.Background(), "tok", "://bad")
	require.Error(t, err)
}

func TestIssues_Create(t *testing.T) {
	issues, mock := newTestIssues(t)

	created, err := issues.Create(context.Background(), "Dark mode", "Please add it", []string{"idea"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Number)
	assert.Equal(t, "https://github.com/owner/repo/issues/1", created.URL)
	assert.Equal(t, "Bearer test-token", mock.LastAuthorization)

	title, labels, ok := mock.Issue(1)
	require.True(t, ok)
	assert.Equal(t, "Dark mode", title)
	assert.Equal(t, []string{"idea"}, labels)
}

func TestIssues_Search(t *testing.T) {
	issues, mock := newTestIssues(t)
	mock.Seed("First idea", "", "alice", "idea")
	mock.Seed("A bug", "", "bob", "bug")
	closed := mock.Seed("Old idea", "", "carol", "idea")
	mock.CloseIssue(closed)

	results, err := issues.Search(context.Background(), "label:idea", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, IssueSummary{
		Number: 1, Title: "First idea", State: "open", Labels: []string{"idea"}, Author: "alice",
	}, results[0])

	q := mock.LastListQuery
	assert.Equal(t, "idea", q.Get("labels"))
	assert.Equal(t, "created", q.Get("sort"))
	assert.Equal(t, "desc", q.Get("direction"))
	assert.Equal(t, "10", q.Get("per_page"))

	results, err = issues.Search(context.Background(), "is:all label:idea", "updated")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "all", mock.LastListQuery.Get("state"))
	assert.Equal(t, "updated", mock.LastListQuery.Get("sort"))
}

func TestIssues_Details(t *testing.T) {
	issues, mock := newTestIssues(t)
	n := mock.Seed("Dark mode", "Please add it", "alice", "idea")
	mock.SeedComment(n, "bob", "Great idea!")
	require.NoError(t, issues.React(context.Background(), n, "+1"))

	details, err := issues.Details(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "Dark mode", details.Title)
	assert.Equal(t, "Please add it", details.Body)
	assert.Equal(t, "alice", details.Author)
	assert.Equal(t, []string{"idea"}, details.Labels)
	assert.Equal(t, 1, details.Reactions.PlusOne)
	assert.Equal(t, 1, details.Reactions.TotalCount)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, "bob", details.Comments[0].User)
	assert.Equal(t, "Great idea!", details.Comments[0].Body)
	assert.False(t, details.Comments[0].CreatedAt.IsZero())

	_, err = issues.Details(context.Background(), 404)
	require.Error(t, err)
}

func TestIssues_React(t *testing.T) {
	issues, mock := newTestIssues(t)
	n := mock.Seed("Dark mode", "", "alice")

	require.NoError(t, issues.React(context.Background(), n, "rocket"))
	assert.Equal(t, 1, mock.Reactions(n)["rocket"])
	assert.Contains(t, mock.LastReactionAccept, "squirrel-girl-preview")

	before := mock.Requests
	err := issues.React(context.Background(), n, "thumbsup")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidReaction))
	assert.Equal(t, before, mock.Requests, "invalid reactions never reach the API")
}

func TestIssues_Comment(t *testing.T) {
	issues, mock := newTestIssues(t)
	n := mock.Seed("Dark mode", "", "alice")

	require.NoError(t, issues.Comment(context.Background(), n, "+1 from me"))
	assert.Equal(t, []string{"+1 from me"}, mock.CommentBodies(n))
}

func TestIssues_APIFailure(t *testing.T) {
	issues, mock := newTestIssues(t)
	mock.FailWith(http.StatusBadGateway)

	_, err := issues.Search(context.Background(), "label:idea", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 1, mock.Requests, "a failed search is not repeated")
}

func TestIssues_SingleRequestPerRead(t *testing.T) {
	issues, mock := newTestIssues(t)
	n := mock.Seed("Flaky", "body", "alice", "idea")
	mock.FailWith(http.StatusServiceUnavailable)

	_, err := issues.Details(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 1, mock.Requests, "comments are not fetched after the issue fails")

	mock.FailWith(0)
	_, err = issues.Details(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, 3, mock.Requests, "issue and comments, one request each")
}

func TestIssues_CreateFailureSendsOnce(t *testing.T) {
	issues, mock := newTestIssues(t)
	mock.FailWith(http.StatusBadGateway)

	_, err := issues.Create(context.Background(), "Once", "", nil)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Requests)
	_, _, ok := mock.Issue(1)
	assert.False(t, ok)
}

func TestIssues_ReturnsContentVerbatim(t *testing.T) {
	issues, mock := newTestIssues(t)
	n := mock.Seed("Cost &#8364;5", "Use `<!-- keep -->` in templates\n", "alice", "idea")
	mock.SeedComment(n, "bob", "  ![diagram](https://example.com/d.png \"title\")  ")

	details, err := issues.Details(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "Cost &#8364;5", details.Title)
	assert.Equal(t, "Use `<!-- keep -->` in templates\n", details.Body)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, "  ![diagram](https://example.com/d.png \"title\")  ", details.Comments[0].Body)

	found, err := issues.Search(context.Background(), "label:idea", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cost &#8364;5", found[0].Title)
}
