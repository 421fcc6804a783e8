package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"

	"github.com/invopop/jsonschema"

	"github.com/cexll/ideas-portal/internal/a2ui"
	"github.com/cexll/ideas-portal/internal/github"
	"github.com/cexll/ideas-portal/internal/tools"
)

// ToolOutput documents the success shape of one tool.
type ToolOutput struct {
	Name   string
	Shape  string
	Schema string
}

var systemPrompt = template.Must(template.New("system-prompt").Parse(SystemPromptTemplate))

// ToolOutputs reflects the success shapes of the tools from their Go types.
var ToolOutputs = sync.OnceValues(func() ([]ToolOutput, error) {
	shapes := []struct {
		name  string
		shape string
		v     any
	}{
		{tools.CreateGitHubIssueTool, "an object", &tools.Result{}},
		{tools.SearchIssuesTool, "a JSON array whose items are", &github.IssueSummary{}},
		{tools.GetIssueDetailsTool, "an object", &github.IssueDetails{}},
		{tools.AddReactionTool, "an object", &tools.Result{}},
		{tools.AddCommentTool, "an object", &tools.Result{}},
	}
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	out := make([]ToolOutput, 0, len(shapes))
	for _, s := range shapes {
		b, err := json.Marshal(r.Reflect(s.v))
		if err != nil {
			return nil, fmt.Errorf("reflect %s output: %w", s.name, err)
		}
		out = append(out, ToolOutput{Name: s.name, Shape: s.shape, Schema: string(b)})
	}
	return out, nil
})

// BuildUIPrompt renders the system prompt. baseURL is where static assets are
// served from; examples is the UI template text, usually from Examples.
func BuildUIPrompt(baseURL, examples string) string {
	schema, err := a2ui.Schema()
	if err != nil {
		return fmt.Sprintf("Error building A2UI schema: %v\n\n%s", err, examples)
	}
	outputs, err := ToolOutputs()
	if err != nil {
		return fmt.Sprintf("Error reflecting tool outputs: %v\n\n%s", err, examples)
	}

	data := map[string]any{
		"Delimiter": a2ui.Delimiter,
		"BaseURL":   baseURL,
		"Tools":     outputs,
		"Examples":  examples,
		"Schema":    string(schema),
	}
	var buf bytes.Buffer
	if err := systemPrompt.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error executing template: %v\n\n%s", err, examples)
	}
	return buf.String()
}

// BuildDefault renders the prompt with the GitHub ideas templates.
func BuildDefault(baseURL string) (string, error) {
	examples, err := Examples(GitHubIdeas)
	if err != nil {
		return "", err
	}
	return BuildUIPrompt(baseURL, examples), nil
}
