package prompt

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

//go:embed examples/*.txt
var examplesFS embed.FS

// Set names one embedded family of UI templates.
type Set string

// Embedded template sets.
const (
	GitHubIdeas Set = "github_ideas"
	Contacts    Set = "contacts"
)

// Sets lists every embedded set.
var Sets = []Set{GitHubIdeas, Contacts}

// ErrUnknownExample is returned for set or template names that are not embedded.
var ErrUnknownExample = errors.New("unknown UI example")

// Block is one named template of a set, delimited by ---BEGIN NAME--- and
// ---END NAME--- lines.
type Block struct {
	Name string
	Body string
}

var blockRegex = regexp.MustCompile(`(?s)---BEGIN ([A-Z0-9_]+)---\s*\n(.*?)\n\s*---END ([A-Z0-9_]+)---`)

// ParseBlocks extracts the blocks of text in order. Blocks whose END name does
// not match their BEGIN name are skipped.
func ParseBlocks(text string) []Block {
	var blocks []Block
	for _, m := range blockRegex.FindAllStringSubmatch(text, -1) {
		if len(m) < 4 || m[1] != m[3] {
			continue
		}
		blocks = append(blocks, Block{Name: m[1], Body: strings.TrimSpace(m[2])})
	}
	return blocks
}

// Examples returns the raw text of a set, ready to be embedded in a prompt.
func Examples(set Set) (string, error) {
	b, err := examplesFS.ReadFile("examples/" + string(set) + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: set %q", ErrUnknownExample, set)
	}
	return string(b), nil
}

// Example returns the JSON message array of one template. The _EXAMPLE
// suffix is optional, so "DASHBOARD" and "DASHBOARD_EXAMPLE" are equivalent.
func Example(name string) (string, error) {
	want := strings.TrimSuffix(strings.ToUpper(name), "_EXAMPLE") + "_EXAMPLE"
	for _, set := range Sets {
		text, err := Examples(set)
		if err != nil {
			return "", err
		}
		for _, b := range ParseBlocks(text) {
			if b.Name == want {
				return b.Body, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExample, name)
}

// Names lists every template name without the _EXAMPLE suffix, grouped by set.
func Names() []string {
	var names []string
	for _, set := range Sets {
		text, err := Examples(set)
		if err != nil {
			continue
		}
		for _, b := range ParseBlocks(text) {
			names = append(names, strings.TrimSuffix(b.Name, "_EXAMPLE"))
		}
	}
	return names
}
