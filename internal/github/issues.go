package github

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// ReactionTypes lists the reaction contents GitHub accepts.
var ReactionTypes = []string{"+1", "-1", "laugh", "confused", "heart", "hooray", "rocket", "eyes"}

// ErrInvalidReaction is returned for reaction contents outside ReactionTypes.
var ErrInvalidReaction = errors.New("invalid reaction type")

// CreatedIssue identifies a newly opened issue.
type CreatedIssue struct {
	Number int    `json:"issue_number"`
	URL    string `json:"issue_url"`
}

// IssueSummary is one search result.
type IssueSummary struct {
	Number   int      `json:"number" jsonschema:"description=Issue number"`
	Title    string   `json:"title"`
	State    string   `json:"state" jsonschema:"enum=open,enum=closed"`
	Comments int      `json:"comments" jsonschema:"description=Number of comments"`
	Labels   []string `json:"labels"`
	Author   string   `json:"author" jsonschema:"description=Login of the issue author"`
	// Reactions is the +1 count.
	Reactions int `json:"reactions" jsonschema:"description=Number of +1 reactions (upvotes)"`
}

// ReactionSummary counts reactions by content.
type ReactionSummary struct {
	TotalCount int `json:"total_count"`
	PlusOne    int `json:"+1"`
	MinusOne   int `json:"-1"`
	Laugh      int `json:"laugh"`
	Confused   int `json:"confused"`
	Heart      int `json:"heart"`
	Hooray     int `json:"hooray"`
	Rocket     int `json:"rocket"`
	Eyes       int `json:"eyes"`
}

// IssueComment is one comment of an issue discussion.
type IssueComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      string    `json:"user" jsonschema:"description=Login of the commenter"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueDetails is an issue with its full discussion.
type IssueDetails struct {
	Number    int             `json:"number"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	State     string          `json:"state" jsonschema:"enum=open,enum=closed"`
	Author    string          `json:"author"`
	Labels    []string        `json:"labels"`
	Reactions ReactionSummary `json:"reactions"`
	Comments  []IssueComment  `json:"comments"`
}

// Create opens an issue.
func (i *Issues) Create(ctx context.Context, title, body string, labels []string) (*CreatedIssue, error) {
	if labels == nil {
		labels = []string{}
	}
	issue, _, err := i.client.Issues.Create(ctx, i.owner, i.repo, &gh.IssueRequest{
		Title:  gh.String(title),
		Body:   gh.String(body),
		Labels: &labels,
	})
	if err != nil {
		return nil, fmt.Errorf("create issue in %s: %w", i.Repo(), err)
	}
	return &CreatedIssue{Number: issue.GetNumber(), URL: issue.GetHTMLURL()}, nil
}

// Search lists issues through the List Issues endpoint, which has no search
// indexing delay. See ParseQuery for the query language.
func (i *Issues) Search(ctx context.Context, query, sortBy string) ([]IssueSummary, error) {
	issues, _, err := i.client.Issues.ListByRepo(ctx, i.owner, i.repo, ParseQuery(query, sortBy))
	if err != nil {
		return nil, fmt.Errorf("list issues in %s: %w", i.Repo(), err)
	}
	out := make([]IssueSummary, 0, len(issues))
	for _, issue := range issues {
		out = append(out, IssueSummary{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			State:     issue.GetState(),
			Comments:  issue.GetComments(),
			Labels:    labelNames(issue.Labels),
			Author:    issue.GetUser().GetLogin(),
			Reactions: issue.GetReactions().GetPlusOne(),
		})
	}
	return out, nil
}

// Details fetches an issue and its comments. Each is a single request; a
// failure is returned as is.
func (i *Issues) Details(ctx context.Context, number int) (*IssueDetails, error) {
	issue, _, err := i.client.Issues.Get(ctx, i.owner, i.repo, number)
	if err != nil {
		return nil, fmt.Errorf("get issue %s#%d: %w", i.Repo(), number, err)
	}
	comments, _, err := i.client.Issues.ListComments(ctx, i.owner, i.repo, number, nil)
	if err != nil {
		return nil, fmt.Errorf("list comments of %s#%d: %w", i.Repo(), number, err)
	}

	r := issue.GetReactions()
	details := &IssueDetails{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
		Author: issue.GetUser().GetLogin(),
		Labels: labelNames(issue.Labels),
		Reactions: ReactionSummary{
			TotalCount: r.GetTotalCount(),
			PlusOne:    r.GetPlusOne(),
			MinusOne:   r.GetMinusOne(),
			Laugh:      r.GetLaugh(),
			Confused:   r.GetConfused(),
			Heart:      r.GetHeart(),
			Hooray:     r.GetHooray(),
			Rocket:     r.GetRocket(),
			Eyes:       r.GetEyes(),
		},
		Comments: make([]IssueComment, 0, len(comments)),
	}
	for _, c := range comments {
		details.Comments = append(details.Comments, IssueComment{
			ID:        c.GetID(),
			Body:      c.GetBody(),
			User:      c.GetUser().GetLogin(),
			CreatedAt: c.GetCreatedAt().Time,
		})
	}
	return details, nil
}

// React adds a reaction to an issue.
func (i *Issues) React(ctx context.Context, number int, content string) error {
	if !slices.Contains(ReactionTypes, content) {
		return fmt.Errorf("%w: %q", ErrInvalidReaction, content)
	}
	if _, _, err := i.client.Reactions.CreateIssueReaction(ctx, i.owner, i.repo, number, content); err != nil {
		return fmt.Errorf("react to %s#%d: %w", i.Repo(), number, err)
	}
	return nil
}

// Comment posts a comment on an issue.
func (i *Issues) Comment(ctx context.Context, number int, body string) error {
	if _, _, err := i.client.Issues.CreateComment(ctx, i.owner, i.repo, number, &gh.IssueComment{Body: gh.String(body)}); err != nil {
		return fmt.Errorf("comment on %s#%d: %w", i.Repo(), number, err)
	}
	return nil
}

func labelNames(labels []*gh.Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.GetName())
	}
	return out
}
