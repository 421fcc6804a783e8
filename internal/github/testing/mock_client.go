package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// Owner and Repo are the repository the mock serves.
const (
	Owner = "owner"
	Repo  = "repo"
)

type mockComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      mockUser  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type mockUser struct {
	Login string `json:"login"`
}

type mockLabel struct {
	Name string `json:"name"`
}

type mockIssue struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	State     string         `json:"state"`
	HTMLURL   string         `json:"html_url"`
	User      mockUser       `json:"user"`
	Labels    []mockLabel    `json:"labels"`
	Comments  int            `json:"comments"`
	Reactions map[string]int `json:"reactions"`

	comments []mockComment
}

// MockGitHub is an in-memory stand-in for the issue endpoints of the GitHub
// REST API:
//   - POST /repos/{owner}/{repo}/issues
//   - GET  /repos/{owner}/{repo}/issues
//   - GET  /repos/{owner}/{repo}/issues/{number}
//   - GET  /repos/{owner}/{repo}/issues/{number}/comments
//   - POST /repos/{owner}/{repo}/issues/{number}/comments
//   - POST /repos/{owner}/{repo}/issues/{number}/reactions
type MockGitHub struct {
	Server *httptest.Server

	mu     sync.Mutex
	issues map[int]*mockIssue
	next   int
	nextID int64
	fail   int

	// LastListQuery is the query string of the latest list request.
	LastListQuery url.Values
	// LastReactionAccept is the Accept header of the latest reaction request.
	LastReactionAccept string
	// LastAuthorization is the Authorization header of the latest request.
	LastAuthorization string
	// Requests counts every request served.
	Requests int
}

var (
	issuePath     = regexp.MustCompile(`^/repos/` + Owner + `/` + Repo + `/issues/(\d+)$`)
	commentsPath  = regexp.MustCompile(`^/repos/` + Owner + `/` + Repo + `/issues/(\d+)/comments$`)
	reactionsPath = regexp.MustCompile(`^/repos/` + Owner + `/` + Repo + `/issues/(\d+)/reactions$`)
)

// NewMockGitHub starts the mock server. Callers must Close it.
func NewMockGitHub() *MockGitHub {
	m := &MockGitHub{issues: map[int]*mockIssue{}, next: 1, nextID: 1000}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the API root to pass as a base URL override.
func (m *MockGitHub) URL() string {
	return m.Server.URL + "/"
}

// Client returns a go-github client pointed at the mock.
func (m *MockGitHub) Client() *gh.Client {
	client := gh.NewClient(m.Server.Client())
	base, _ := url.Parse(m.URL())
	client.BaseURL = base
	return client
}

// Close shuts the server down.
func (m *MockGitHub) Close() {
	m.Server.Close()
}

// FailWith makes every following request answer with status. Zero restores
// normal behaviour.
func (m *MockGitHub) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = status
}

// Seed adds an open issue and returns its number.
func (m *MockGitHub) Seed(title, body, author string, labels ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(title, body, author, labels)
}

// SeedComment adds a comment to an issue.
func (m *MockGitHub) SeedComment(number int, user, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if issue, ok := m.issues[number]; ok {
		m.comment(issue, user, body)
	}
}

// CloseIssue marks an issue closed.
func (m *MockGitHub) CloseIssue(number int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if issue, ok := m.issues[number]; ok {
		issue.State = "closed"
	}
}

// Reactions returns the reaction counts of an issue.
func (m *MockGitHub) Reactions(number int) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	if issue, ok := m.issues[number]; ok {
		for k, v := range issue.Reactions {
			out[k] = v
		}
	}
	return out
}

// CommentBodies returns the comment bodies of an issue in order.
func (m *MockGitHub) CommentBodies(number int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	if issue, ok := m.issues[number]; ok {
		for _, c := range issue.comments {
			out = append(out, c.Body)
		}
	}
	return out
}

// Issue returns the title and labels of an issue.
func (m *MockGitHub) Issue(number int) (title string, labels []string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[number]
	if !ok {
		return "", nil, false
	}
	for _, l := range issue.Labels {
		labels = append(labels, l.Name)
	}
	return issue.Title, labels, true
}

func (m *MockGitHub) add(title, body, author string, labels []string) int {
	n := m.next
	m.next++
	issue := &mockIssue{
		Number:    n,
		Title:     title,
		Body:      body,
		State:     "open",
		HTMLURL:   fmt.Sprintf("https://github.com/%s/%s/issues/%d", Owner, Repo, n),
		User:      mockUser{Login: author},
		Labels:    []mockLabel{},
		Reactions: map[string]int{"total_count": 0, "+1": 0},
	}
	for _, l := range labels {
		issue.Labels = append(issue.Labels, mockLabel{Name: l})
	}
	m.issues[n] = issue
	return n
}

func (m *MockGitHub) comment(issue *mockIssue, user, body string) mockComment {
	c := mockComment{
		ID:        m.nextID,
		Body:      body,
		User:      mockUser{Login: user},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Add(time.Duration(m.nextID) * time.Minute),
	}
	m.nextID++
	issue.comments = append(issue.comments, c)
	issue.Comments = len(issue.comments)
	return c
}

func (m *MockGitHub) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests++
	m.LastAuthorization = r.Header.Get("Authorization")
	if m.fail != 0 {
		writeJSON(w, m.fail, map[string]string{"message": http.StatusText(m.fail)})
		return
	}

	p := r.URL.Path
	switch {
	case p == "/repos/"+Owner+"/"+Repo+"/issues":
		m.serveIssues(w, r)
	case issuePath.MatchString(p) && r.Method == http.MethodGet:
		issue, ok := m.lookup(issuePath, p)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, issue)
	case commentsPath.MatchString(p):
		m.serveComments(w, r)
	case reactionsPath.MatchString(p) && r.Method == http.MethodPost:
		m.serveReaction(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}
}

func (m *MockGitHub) serveIssues(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Title  string   `json:"title"`
			Body   string   `json:"body"`
			Labels []string `json:"labels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}
		n := m.add(req.Title, req.Body, "portal-bot", req.Labels)
		writeJSON(w, http.StatusCreated, m.issues[n])

	case http.MethodGet:
		q := r.URL.Query()
		m.LastListQuery = q
		state := q.Get("state")
		if state == "" {
			state = "open"
		}
		var want []string
		if l := q.Get("labels"); l != "" {
			want = strings.Split(l, ",")
		}
		out := []*mockIssue{}
		// newest first
		for n := m.next - 1; n >= 1; n-- {
			issue, ok := m.issues[n]
			if !ok || (state != "all" && issue.State != state) || !hasLabels(issue, want) {
				continue
			}
			out = append(out, issue)
		}
		if per, err := strconv.Atoi(q.Get("per_page")); err == nil && per > 0 && len(out) > per {
			out = out[:per]
		}
		writeJSON(w, http.StatusOK, out)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method"})
	}
}

func (m *MockGitHub) serveComments(w http.ResponseWriter, r *http.Request) {
	issue, ok := m.lookup(commentsPath, r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		out := issue.comments
		if out == nil {
			out = []mockComment{}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}
		writeJSON(w, http.StatusCreated, m.comment(issue, "portal-bot", req.Body))
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method"})
	}
}

func (m *MockGitHub) serveReaction(w http.ResponseWriter, r *http.Request) {
	m.LastReactionAccept = r.Header.Get("Accept")
	issue, ok := m.lookup(reactionsPath, r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	issue.Reactions[req.Content]++
	issue.Reactions["total_count"]++
	writeJSON(w, http.StatusCreated, map[string]any{"id": m.nextID, "content": req.Content})
}

func (m *MockGitHub) lookup(re *regexp.Regexp, p string) (*mockIssue, bool) {
	match := re.FindStringSubmatch(p)
	if len(match) != 2 {
		return nil, false
	}
	n, _ := strconv.Atoi(match[1])
	issue, ok := m.issues[n]
	return issue, ok
}

func hasLabels(issue *mockIssue, want []string) bool {
	for _, w := range want {
		found := false
		for _, l := range issue.Labels {
			if l.Name == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
