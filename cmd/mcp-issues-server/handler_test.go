package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ghtesting "github.com/cexll/ideas-portal/internal/github/testing"
	"github.com/cexll/ideas-portal/internal/prompt"
	"github.com/cexll/ideas-portal/internal/tools"
)

func connect(t *testing.T, env map[string]string) (*mcp.ClientSession, *ghtesting.MockGitHub) {
	t.Helper()
	mock := ghtesting.NewMockGitHub()
	t.Cleanup(mock.Close)
	env[tools.EnvAPIURL] = mock.URL()
	toolset := tools.New(tools.WithGetenv(func(k string) string { return env[k] }))

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := NewServer(toolset, "http://localhost:8000").Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs, mock
}

func validEnv() map[string]string {
	return map[string]string{
		tools.EnvToken: "test-token",
		tools.EnvRepo:  ghtesting.Owner + "/" + ghtesting.Repo,
	}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Expected one content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t, validEnv())

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	got := map[string]*mcp.Tool{}
	for _, tl := range res.Tools {
		got[tl.Name] = tl
	}
	for _, name := range tools.Names {
		tl, ok := got[name]
		if !ok {
			t.Errorf("tool %s not registered", name)
			continue
		}
		if tl.Description == "" {
			t.Errorf("tool %s has no description", name)
		}
		if tl.InputSchema == nil {
			t.Errorf("tool %s has no input schema", name)
		}
	}
	if len(res.Tools) != len(tools.Names) {
		t.Errorf("Expected %d tools, got %d", len(tools.Names), len(res.Tools))
	}
}

func TestCallTool_CreateAndSearch(t *testing.T) {
	cs, mock := connect(t, validEnv())
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.CreateGitHubIssueTool,
		Arguments: map[string]any{"title": "Offline mode", "body": "Cache issues", "labels": []string{"idea"}},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("create reported an error: %s", text(t, res))
	}
	var created tools.Result
	if err := json.Unmarshal([]byte(text(t, res)), &created); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !created.Success || created.IssueNumber != 1 {
		t.Errorf("created = %+v", created)
	}
	if title, _, ok := mock.Issue(1); !ok || title != "Offline mode" {
		t.Errorf("mock issue 1 = %q, %v", title, ok)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.SearchIssuesTool,
		Arguments: map[string]any{"query": "label:idea"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("search reported an error: %s", text(t, res))
	}
	if !strings.Contains(text(t, res), `"title":"Offline mode"`) {
		t.Errorf("search result = %s", text(t, res))
	}
}

func TestCallTool_ReactionAndComment(t *testing.T) {
	cs, mock := connect(t, validEnv())
	ctx := context.Background()
	n := mock.Seed("Idea", "body", "alice", "idea")

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.AddReactionTool,
		Arguments: map[string]any{"issue_number": n},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("reaction reported an error: %s", text(t, res))
	}
	if got := mock.Reactions(n)["+1"]; got != 1 {
		t.Errorf("+1 reactions = %d, want 1", got)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.AddCommentTool,
		Arguments: map[string]any{"issue_number": n, "body": "Love it"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("comment reported an error: %s", text(t, res))
	}
	if got := mock.CommentBodies(n); len(got) != 1 || got[0] != "Love it" {
		t.Errorf("comments = %v", got)
	}
}

func TestCallTool_ErrorEnvelopes(t *testing.T) {
	cs, mock := connect(t, map[string]string{})
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.GetIssueDetailsTool,
		Arguments: map[string]any{"issue_number": 1},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !res.IsError {
		t.Error("Expected IsError for missing environment")
	}
	if want := "GITHUB_REPO environment variable not set."; !strings.Contains(text(t, res), want) {
		t.Errorf("result = %s, want it to mention %q", text(t, res), want)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.CreateGitHubIssueTool,
		Arguments: map[string]any{"title": "x", "body": "y"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !res.IsError || !strings.Contains(text(t, res), `"success":false`) {
		t.Errorf("create without env = %s (IsError %v)", text(t, res), res.IsError)
	}
	if mock.Requests != 0 {
		t.Errorf("Expected no GitHub requests, got %d", mock.Requests)
	}
}

func TestGetPrompt(t *testing.T) {
	cs, _ := connect(t, validEnv())

	res, err := cs.GetPrompt(context.Background(), &mcp.GetPromptParams{Name: PromptName})
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("Expected one prompt message, got %d", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Messages[0].Content)
	}
	for _, want := range []string{"http://localhost:8000", "---BEGIN A2UI JSON SCHEMA---", "dashboard-root"} {
		if !strings.Contains(tc.Text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExampleResources(t *testing.T) {
	cs, _ := connect(t, validEnv())
	ctx := context.Background()

	list, err := cs.ListResources(ctx, nil)
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(list.Resources) != len(prompt.Names()) {
		t.Errorf("Expected %d resources, got %d", len(prompt.Names()), len(list.Resources))
	}

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "a2ui://examples/DASHBOARD"})
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	want, _ := prompt.Example("DASHBOARD")
	if len(res.Contents) != 1 || res.Contents[0].Text != want {
		t.Errorf("DASHBOARD resource does not match the embedded template")
	}

	if _, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "a2ui://examples/NOPE"}); err == nil {
		t.Error("Expected error for unknown template")
	}
}

func TestIsFailure(t *testing.T) {
	tests := []struct {
		out  string
		want bool
	}{
		{`{"error":"boom"}`, true},
		{`{"success":false,"message":"boom"}`, true},
		{`{"success":true,"message":"ok"}`, false},
		{`[]`, false},
		{`[{"number":1}]`, false},
		{`{"number":1,"title":"x"}`, false},
	}
	for _, tt := range tests {
		if got := isFailure(tt.out); got != tt.want {
			t.Errorf("isFailure(%s) = %v, want %v", tt.out, got, tt.want)
		}
	}
}
