// Package datamodel implements the per-surface hierarchical store that
// components bind to by path.
//
// Values are string, float64, bool or map[string]any. Ordered lists are maps
// keyed "0", "1", ... so single elements can be patched by index. A Model is
// not safe for concurrent use; the surface registry serialises access.
package datamodel

import (
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/cexll/ideas-portal/internal/a2ui"
)

// ErrInvalidValue is returned by Set for values the model cannot hold.
var ErrInvalidValue = errors.New("invalid data model value")

// Model is a hierarchical key/value store.
type Model struct {
	root map[string]any
}

// New returns an empty model.
func New() *Model {
	return &Model{root: map[string]any{}}
}

// Apply deep-merges entries into the map at basePath, creating intermediate
// maps as needed. Scalars replace, valueMap merges into an existing map and
// valueList replaces the target node. Applying the same entries twice leaves
// the model as applying them once.
func (m *Model) Apply(basePath string, entries []a2ui.DataEntry) {
	node := m.ensureMap(split(basePath))
	for _, e := range entries {
		merge(node, e)
	}
}

// Get returns the value at an absolute path. The root path returns the
// whole model.
func (m *Model) Get(path string) (any, bool) {
	var cur any = m.root
	for _, key := range split(path) {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = node[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores a decoded JSON value at an absolute path. Arrays become
// list-shaped maps and integers become float64. Setting the root requires an
// object.
func (m *Model) Set(path string, value any) error {
	v, err := fromPayload(value)
	if err != nil {
		return err
	}

	keys := split(path)
	if len(keys) == 0 {
		root, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: cannot replace root with %T", ErrInvalidValue, value)
		}
		m.root = root
		return nil
	}
	parent := m.ensureMap(keys[:len(keys)-1])
	parent[keys[len(keys)-1]] = v
	return nil
}

// Snapshot returns a deep copy of the model's contents.
func (m *Model) Snapshot() map[string]any {
	return deepCopy(m.root)
}

// ensureMap walks keys from the root, replacing any non-map node on the way
// with an empty map.
func (m *Model) ensureMap(keys []string) map[string]any {
	node := m.root
	for _, key := range keys {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[key] = child
		}
		node = child
	}
	return node
}

func merge(node map[string]any, e a2ui.DataEntry) {
	if e.ValueMap != nil {
		child, ok := node[e.Key].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[e.Key] = child
		}
		for _, c := range e.ValueMap {
			merge(child, c)
		}
		return
	}
	node[e.Key] = entryValue(e)
}

// entryValue builds a fresh value for e.
func entryValue(e a2ui.DataEntry) any {
	switch {
	case e.ValueString != nil:
		return *e.ValueString
	case e.ValueNumber != nil:
		return *e.ValueNumber
	case e.ValueBoolean != nil:
		return *e.ValueBoolean
	case e.ValueMap != nil:
		out := make(map[string]any, len(e.ValueMap))
		for _, c := range e.ValueMap {
			merge(out, c)
		}
		return out
	case e.ValueList != nil:
		out := make(map[string]any, len(e.ValueList))
		for i, c := range e.ValueList {
			out[strconv.Itoa(i)] = entryValue(c)
		}
		return out
	}
	return ""
}

func deepCopy(src map[string]any) map[string]any {
	out := maps.Clone(src)
	for k, v := range out {
		if child, ok := v.(map[string]any); ok {
			out[k] = deepCopy(child)
		}
	}
	return out
}
