package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// ErrInvalidRepo is returned for repository names not of the form
// "owner/name".
var ErrInvalidRepo = errors.New("repository must be in owner/name form")

// ParseRepo splits "owner/name".
func ParseRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return owner, name, nil
}

// NewClient returns a REST client authenticating with a static token.
// apiURL overrides the API root (GitHub Enterprise or a test server) when
// not empty.
func NewClient(ctx context.Context, token, apiURL string) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))
	if apiURL == "" {
		return client, nil
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse GitHub API URL: %w", err)
	}
	client.BaseURL = base
	return client, nil
}

// Issues runs issue operations against one repository.
type Issues struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewIssues binds a client to "owner/name".
func NewIssues(client *gh.Client, repo string) (*Issues, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}
	return &Issues{client: client, owner: owner, repo: name}, nil
}

// Repo returns "owner/name".
func (i *Issues) Repo() string {
	return i.owner + "/" + i.repo
}
