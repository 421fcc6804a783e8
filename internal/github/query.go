package github

import (
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// SearchPageSize is the number of issues a search returns.
const SearchPageSize = 10

// ParseQuery translates the small query language accepted by search into
// List Issues options. Supported terms are label:x (comma lists allowed),
// is:open, is:closed and is:all; anything else is ignored. Without an is:
// term GitHub's default state (open) applies. Results are sorted by sortBy,
// newest first.
func ParseQuery(query, sortBy string) *gh.IssueListByRepoOptions {
	if sortBy == "" {
		sortBy = "created"
	}
	opts := &gh.IssueListByRepoOptions{
		Sort:        sortBy,
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: SearchPageSize},
	}
	for _, part := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(part, "label:"):
			// the last label: term wins
			opts.Labels = nil
			for _, l := range strings.Split(strings.TrimPrefix(part, "label:"), ",") {
				if l != "" {
					opts.Labels = append(opts.Labels, l)
				}
			}
		case part == "is:open":
			opts.State = "open"
		case part == "is:closed":
			opts.State = "closed"
		case part == "is:all":
			opts.State = "all"
		}
	}
	return opts
}
