// Package tools wraps the GitHub issue operations as agent tools. Every tool
// returns a JSON string and never an error: failures are folded into an
// {"error": ...} or {"success": false, "message": ...} envelope for the agent
// to surface.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"
	gh "github.com/google/go-github/v66/github"

	"github.com/cexll/ideas-portal/internal/github"
	"github.com/cexll/ideas-portal/internal/metrics"
)

// Tool names as exposed to the agent.
const (
	CreateGitHubIssueTool = "create_github_issue"
	SearchIssuesTool      = "search_issues"
	GetIssueDetailsTool   = "get_issue_details"
	AddReactionTool       = "add_reaction"
	AddCommentTool        = "add_comment"
)

// Names lists every tool in registration order.
var Names = []string{
	CreateGitHubIssueTool,
	SearchIssuesTool,
	GetIssueDetailsTool,
	AddReactionTool,
	AddCommentTool,
}

// Environment variables read on every call.
const (
	EnvToken  = "GITHUB_TOKEN"
	EnvRepo   = "GITHUB_REPO"
	EnvAPIURL = "GITHUB_API_URL"
)

var (
	// ErrUnknownTool is returned by Call for names outside Names.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrMissingEnv reports an unset required environment variable.
	ErrMissingEnv = errors.New("environment variable not set")
)

// CreateIssueArgs are the arguments of create_github_issue.
type CreateIssueArgs struct {
	Title  string   `json:"title" jsonschema:"The title of the issue"`
	Body   string   `json:"body" jsonschema:"The body of the issue"`
	Labels []string `json:"labels,omitempty" jsonschema:"Optional labels to apply, e.g. idea or bug"`
}

// SearchArgs are the arguments of search_issues.
type SearchArgs struct {
	Query  string `json:"query" jsonschema:"Search query, e.g. is:issue is:open label:idea"`
	SortBy string `json:"sort_by,omitempty" jsonschema:"One of created, updated or comments"`
}

// IssueArgs are the arguments of get_issue_details.
type IssueArgs struct {
	IssueNumber int `json:"issue_number" jsonschema:"The number of the issue"`
}

// ReactionArgs are the arguments of add_reaction.
type ReactionArgs struct {
	IssueNumber  int    `json:"issue_number" jsonschema:"The number of the issue"`
	ReactionType string `json:"reaction_type,omitempty" jsonschema:"One of +1, -1, laugh, confused, heart, hooray, rocket, eyes"`
}

// CommentArgs are the arguments of add_comment.
type CommentArgs struct {
	IssueNumber int    `json:"issue_number" jsonschema:"The number of the issue"`
	Body        string `json:"body" jsonschema:"The comment text"`
}

// Result is the success/message envelope of the mutating tools.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IssueURL    string `json:"issue_url,omitempty"`
	IssueNumber int    `json:"issue_number,omitempty"`
}

// ErrorResult is the envelope of failed read tools and of failed reactions
// and comments.
type ErrorResult struct {
	Error string `json:"error"`
}

// ClientFactory builds a GitHub client for one call.
type ClientFactory func(ctx context.Context, token, apiURL string) (*gh.Client, error)

// Toolset runs the tools against the repository named by the environment.
type Toolset struct {
	getenv    func(string) string
	newClient ClientFactory
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithGetenv replaces os.Getenv.
func WithGetenv(getenv func(string) string) Option {
	return func(t *Toolset) { t.getenv = getenv }
}

// WithClientFactory replaces github.NewClient.
func WithClientFactory(f ClientFactory) Option {
	return func(t *Toolset) { t.newClient = f }
}

// New returns a Toolset reading the process environment.
func New(opts ...Option) *Toolset {
	t := &Toolset{getenv: os.Getenv, newClient: github.NewClient}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// issues resolves the repository and credentials. The repository is checked
// first, then the token; neither check touches the network.
func (t *Toolset) issues(ctx context.Context) (*github.Issues, error) {
	repo := t.getenv(EnvRepo)
	if repo == "" {
		return nil, fmt.Errorf("%s %w.", EnvRepo, ErrMissingEnv)
	}
	token := t.getenv(EnvToken)
	if token == "" {
		return nil, fmt.Errorf("%s %w.", EnvToken, ErrMissingEnv)
	}
	client, err := t.newClient(ctx, token, t.getenv(EnvAPIURL))
	if err != nil {
		return nil, err
	}
	return github.NewIssues(client, repo)
}

// CreateGitHubIssue opens an issue.
func (t *Toolset) CreateGitHubIssue(ctx context.Context, args CreateIssueArgs) string {
	log := clog.FromContext(ctx).With("tool", CreateGitHubIssueTool)
	log.Info("Tool called", "title", args.Title, "labels", args.Labels)

	created, err := func() (*github.CreatedIssue, error) {
		issues, err := t.issues(ctx)
		if err != nil {
			return nil, err
		}
		return issues.Create(ctx, args.Title, args.Body, args.Labels)
	}()
	metrics.ToolCalled(CreateGitHubIssueTool, err != nil)
	if err != nil {
		msg := "Error creating issue: " + err.Error()
		log.Error(msg)
		return encode(Result{Success: false, Message: msg})
	}
	log.Info("Created issue", "url", created.URL)
	return encode(Result{
		Success:     true,
		Message:     "GitHub issue created successfully: " + created.URL,
		IssueURL:    created.URL,
		IssueNumber: created.Number,
	})
}

// SearchIssues lists issues matching the query mini-language.
func (t *Toolset) SearchIssues(ctx context.Context, args SearchArgs) string {
	log := clog.FromContext(ctx).With("tool", SearchIssuesTool)
	log.Info("Tool called", "query", args.Query, "sort", args.SortBy)

	found, err := func() ([]github.IssueSummary, error) {
		issues, err := t.issues(ctx)
		if err != nil {
			return nil, err
		}
		return issues.Search(ctx, args.Query, args.SortBy)
	}()
	metrics.ToolCalled(SearchIssuesTool, err != nil)
	if err != nil {
		return failure(log, "Error searching issues: ", err)
	}
	return encode(found)
}

// GetIssueDetails fetches an issue with its comments and reactions.
func (t *Toolset) GetIssueDetails(ctx context.Context, args IssueArgs) string {
	log := clog.FromContext(ctx).With("tool", GetIssueDetailsTool)
	log.Info("Tool called", "number", args.IssueNumber)

	details, err := func() (*github.IssueDetails, error) {
		issues, err := t.issues(ctx)
		if err != nil {
			return nil, err
		}
		return issues.Details(ctx, args.IssueNumber)
	}()
	metrics.ToolCalled(GetIssueDetailsTool, err != nil)
	if err != nil {
		return failure(log, "Error getting issue details: ", err)
	}
	return encode(details)
}

// AddReaction reacts to an issue; the reaction defaults to +1.
func (t *Toolset) AddReaction(ctx context.Context, args ReactionArgs) string {
	if args.ReactionType == "" {
		args.ReactionType = "+1"
	}
	log := clog.FromContext(ctx).With("tool", AddReactionTool)
	log.Info("Tool called", "number", args.IssueNumber, "type", args.ReactionType)

	err := func() error {
		issues, err := t.issues(ctx)
		if err != nil {
			return err
		}
		return issues.React(ctx, args.IssueNumber, args.ReactionType)
	}()
	metrics.ToolCalled(AddReactionTool, err != nil)
	if err != nil {
		return failure(log, "Error adding reaction: ", err)
	}
	return encode(Result{Success: true, Message: "Reaction added."})
}

// AddComment posts a comment on an issue.
func (t *Toolset) AddComment(ctx context.Context, args CommentArgs) string {
	log := clog.FromContext(ctx).With("tool", AddCommentTool)
	log.Info("Tool called", "number", args.IssueNumber)

	err := func() error {
		issues, err := t.issues(ctx)
		if err != nil {
			return err
		}
		return issues.Comment(ctx, args.IssueNumber, args.Body)
	}()
	metrics.ToolCalled(AddCommentTool, err != nil)
	if err != nil {
		return failure(log, "Error posting comment: ", err)
	}
	return encode(Result{Success: true, Message: "Comment posted."})
}

// Call decodes rawArgs for the named tool and runs it. Only an unknown name
// or undecodable arguments produce an error.
func (t *Toolset) Call(ctx context.Context, name string, rawArgs json.RawMessage) (string, error) {
	if len(rawArgs) == 0 {
		rawArgs = json.RawMessage("{}")
	}
	switch name {
	case CreateGitHubIssueTool:
		var args CreateIssueArgs
		if err := decode(name, rawArgs, &args); err != nil {
			return "", err
		}
		return t.CreateGitHubIssue(ctx, args), nil
	case SearchIssuesTool:
		var args SearchArgs
		if err := decode(name, rawArgs, &args); err != nil {
			return "", err
		}
		return t.SearchIssues(ctx, args), nil
	case GetIssueDetailsTool:
		var args IssueArgs
		if err := decode(name, rawArgs, &args); err != nil {
			return "", err
		}
		return t.GetIssueDetails(ctx, args), nil
	case AddReactionTool:
		var args ReactionArgs
		if err := decode(name, rawArgs, &args); err != nil {
			return "", err
		}
		return t.AddReaction(ctx, args), nil
	case AddCommentTool:
		var args CommentArgs
		if err := decode(name, rawArgs, &args); err != nil {
			return "", err
		}
		return t.AddComment(ctx, args), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

func decode(name string, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s arguments: %w", name, err)
	}
	return nil
}

func failure(log *clog.Logger, prefix string, err error) string {
	msg := prefix + err.Error()
	log.Error(msg)
	return encode(ErrorResult{Error: msg})
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(ErrorResult{Error: "encode result: " + err.Error()})
	}
	return string(b)
}
