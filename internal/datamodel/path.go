package datamodel

import "strings"

// Scope is an immutable path-rebasing context. Relative paths resolve
// against its base; absolute paths (leading "/") ignore it. Template
// expansion hands each instance a Scope rooted at its list element.
type Scope struct {
	base string
}

// Root returns the scope of the whole data model.
func Root() Scope {
	return Scope{}
}

// At returns a scope based at the absolute form of path.
func At(path string) Scope {
	return Scope{base: Root().Abs(path)}
}

// Abs resolves path against the scope and returns a normalized absolute
// path.
func (s Scope) Abs(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = s.base + "/" + path
	}
	return join(split(path))
}

// Child returns the scope one key below s.
func (s Scope) Child(key string) Scope {
	return Scope{base: s.Abs(key)}
}

// Path returns the absolute base of the scope.
func (s Scope) Path() string {
	return s.Abs("")
}

func (s Scope) String() string {
	return s.Path()
}

// split breaks a slash-delimited path into its keys, dropping empty and "."
// segments.
func split(path string) []string {
	var keys []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		keys = append(keys, seg)
	}
	return keys
}

func join(keys []string) string {
	return "/" + strings.Join(keys, "/")
}
