package datamodel

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/cexll/ideas-portal/internal/a2ui"
)

// Lookup returns the value v refers to: its literal, or the data at its path
// resolved against scope. The boolean is false for a path that does not
// resolve.
func (m *Model) Lookup(scope Scope, v a2ui.BoundValue) (any, bool) {
	if lit, ok := v.Literal(); ok {
		return lit, true
	}
	if !v.IsPath() {
		return nil, false
	}
	return m.Get(scope.Abs(v.Path))
}

// ResolveString returns the string form of v. Missing paths give "".
func (m *Model) ResolveString(scope Scope, v a2ui.BoundValue) string {
	val, ok := m.Lookup(scope, v)
	if !ok {
		return ""
	}
	return Format(val)
}

// ResolveValue returns the raw value of v with list-shaped maps turned into
// slices. Missing paths give "".
func (m *Model) ResolveValue(scope Scope, v a2ui.BoundValue) any {
	val, ok := m.Lookup(scope, v)
	if !ok {
		return ""
	}
	return Plain(val)
}

// Elements returns one scope per element of the list-shaped map at path, in
// numeric key order. Absent or non-list values have no elements.
func (m *Model) Elements(scope Scope, path string) []Scope {
	abs := scope.Abs(path)
	val, ok := m.Get(abs)
	if !ok {
		return nil
	}
	node, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	keys, ok := listKeys(node)
	if !ok {
		return nil
	}
	out := make([]Scope, 0, len(keys))
	base := At(abs)
	for _, key := range keys {
		out = append(out, base.Child(key))
	}
	return out
}

// Format renders a model value as display text. Numbers drop trailing
// zeros, so 5 renders as "5".
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	raw, err := Canonicalize(Plain(v))
	if err != nil {
		return ""
	}
	return string(raw)
}

// Plain converts a model value to its JSON shape: list-shaped maps become
// slices, other maps are copied recursively.
func Plain(v any) any {
	node, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if keys, ok := listKeys(node); ok && len(keys) > 0 {
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, Plain(node[k]))
		}
		return out
	}
	out := make(map[string]any, len(node))
	for k, child := range node {
		out[k] = Plain(child)
	}
	return out
}

// listKeys reports whether every key of node is a non-negative integer and
// returns the keys in numeric order.
func listKeys(node map[string]any) ([]string, bool) {
	type indexed struct {
		key string
		n   int
	}
	idx := make([]indexed, 0, len(node))
	for k := range node {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return nil, false
		}
		idx = append(idx, indexed{k, n})
	}
	slices.SortFunc(idx, func(a, b indexed) int { return a.n - b.n })

	keys := make([]string, len(idx))
	for i, e := range idx {
		keys[i] = e.key
	}
	return keys, true
}

// Canonicalize encodes v as RFC 8785 canonical JSON.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return transform(raw)
}
