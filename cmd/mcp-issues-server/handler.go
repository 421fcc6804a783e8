package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/ideas-portal/internal/prompt"
	"github.com/cexll/ideas-portal/internal/tools"
)

const (
	serverName    = "github-ideas-server"
	serverVersion = "v1.0.0"

	// PromptName is the MCP prompt returning the system prompt.
	PromptName = "github_ideas_portal"

	exampleScheme = "a2ui://examples/"
)

// toolDescriptions are shown to the model when it lists tools.
var toolDescriptions = map[string]string{
	tools.CreateGitHubIssueTool: "Call this tool to create a GitHub issue. Returns success, the issue URL and the issue number.",
	tools.SearchIssuesTool:      "Search for issues in the repository. Returns a list of issue summaries with the +1 reaction count.",
	tools.GetIssueDetailsTool:   "Get full details for a specific issue, including comments and reactions.",
	tools.AddReactionTool:       "Add a reaction to an issue. Defaults to +1 (upvote).",
	tools.AddCommentTool:        "Add a comment to an issue.",
}

// NewServer creates the MCP server with the five GitHub tools, the portal
// prompt and one resource per UI template.
func NewServer(toolset *tools.Toolset, baseURL string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, tool(tools.CreateGitHubIssueTool), handle(toolset.CreateGitHubIssue))
	mcp.AddTool(server, tool(tools.SearchIssuesTool), handle(toolset.SearchIssues))
	mcp.AddTool(server, tool(tools.GetIssueDetailsTool), handle(toolset.GetIssueDetails))
	mcp.AddTool(server, tool(tools.AddReactionTool), handle(toolset.AddReaction))
	mcp.AddTool(server, tool(tools.AddCommentTool), handle(toolset.AddComment))

	server.AddPrompt(&mcp.Prompt{
		Name:        PromptName,
		Description: "System prompt for the GitHub ideas portal agent, including UI templates and the message schema",
	}, promptHandler(baseURL))

	for _, name := range prompt.Names() {
		server.AddResource(&mcp.Resource{
			URI:         exampleScheme + name,
			Name:        strings.ToLower(name),
			Description: fmt.Sprintf("A2UI message list for the %s template", name),
			MIMEType:    "application/json",
		}, HandleReadExample)
	}
	return server
}

func tool(name string) *mcp.Tool {
	return &mcp.Tool{Name: name, Description: toolDescriptions[name]}
}

// handle adapts a tool wrapper to an MCP tool handler. The wrapper's JSON
// string becomes the text content; error envelopes set IsError.
func handle[In any](fn func(context.Context, In) string) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, any, error) {
		out := fn(ctx, args)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
			IsError: isFailure(out),
		}, nil, nil
	}
}

// isFailure reports whether out is an {"error": ...} or
// {"success": false, ...} envelope.
func isFailure(out string) bool {
	var env struct {
		Error   *string `json:"error"`
		Success *bool   `json:"success"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		// arrays are search results
		return false
	}
	return env.Error != nil || (env.Success != nil && !*env.Success)
}

func promptHandler(baseURL string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := prompt.BuildDefault(baseURL)
		if err != nil {
			clog.FromContext(ctx).With("error", err).Error("Failed to build system prompt")
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: "GitHub ideas portal system prompt",
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}

// HandleReadExample serves a2ui://examples/{NAME}.
func HandleReadExample(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	name, ok := strings.CutPrefix(uri, exampleScheme)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	body, err := prompt.Example(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: body},
		},
	}, nil
}
