package surface

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/chainguard-dev/clog"

	"github.com/cexll/ideas-portal/internal/a2ui"
	"github.com/cexll/ideas-portal/internal/datamodel"
)

// Tree is a fully resolved rendering of a surface.
type Tree struct {
	SurfaceID  string      `json:"surfaceId" yaml:"surfaceId"`
	Styles     a2ui.Styles `json:"styles" yaml:"styles"`
	Root       *Node       `json:"root,omitempty" yaml:"root,omitempty"`
	DataDigest string      `json:"dataDigest" yaml:"dataDigest"`
}

// Node is one component instance. Scope is the data path its relative
// bindings resolve against; template instances each get their own.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     a2ui.Kind      `json:"kind" yaml:"kind"`
	Scope    string         `json:"scope" yaml:"scope"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Digest returns the SHA-256 hex digest of the canonical tree. It changes
// whenever the rendered output does: styles, root, component props and
// structure, and the data model.
func (t *Tree) Digest() (string, error) {
	b, err := datamodel.Canonicalize(t)
	if err != nil {
		return "", fmt.Errorf("surface %q: %w", t.SurfaceID, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Render resolves the surface into a tree. Until the root component is
// defined the tree has no root. Unresolved paths render as empty values and
// missing child components are skipped.
func (r *Registry) Render(ctx context.Context, surfaceID string) (*Tree, error) {
	release, err := r.lock(ctx, surfaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := r.get(surfaceID)
	if err != nil {
		return nil, err
	}
	digest, err := s.data.Digest()
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", surfaceID, err)
	}

	tree := &Tree{SurfaceID: s.ID, Styles: s.Styles, DataDigest: digest}
	if _, ok := s.components[s.Root]; !ok {
		clog.FromContext(ctx).With("surface", s.ID).With("root", s.Root).Debug("Root component not defined yet")
		return tree, nil
	}

	rn := &renderer{ctx: ctx, s: s}
	root, err := rn.node(s.Root, datamodel.Root(), nil)
	if err != nil {
		return nil, err
	}
	tree.Root = root
	return tree, nil
}

type renderer struct {
	ctx context.Context
	s   *Surface
}

func (rn *renderer) node(id string, scope datamodel.Scope, stack []string) (*Node, error) {
	if slices.Contains(stack, id) {
		return nil, &CycleError{SurfaceID: rn.s.ID, Path: append(slices.Clone(stack), id)}
	}
	c := rn.s.components[id]
	stack = append(stack, id)

	n := &Node{ID: id, Kind: c.Kind(), Scope: scope.Path(), Props: map[string]any{}}
	var children []string

	switch v := c.(type) {
	case *a2ui.Column:
		setIf(n.Props, "alignment", v.Alignment)
		setIf(n.Props, "distribution", v.Distribution)
		return rn.withChildren(n, v.Children, scope, stack)
	case *a2ui.Row:
		setIf(n.Props, "alignment", v.Alignment)
		setIf(n.Props, "distribution", v.Distribution)
		return rn.withChildren(n, v.Children, scope, stack)
	case *a2ui.List:
		setIf(n.Props, "direction", v.Direction)
		setIf(n.Props, "alignment", v.Alignment)
		return rn.withChildren(n, v.Children, scope, stack)
	case *a2ui.Card:
		children = []string{v.Child}
	case *a2ui.Text:
		n.Props["text"] = rn.text(scope, v.Text)
		setIf(n.Props, "usageHint", v.UsageHint)
	case *a2ui.Heading:
		n.Props["text"] = rn.text(scope, v.Text)
		setIf(n.Props, "level", v.Level)
	case *a2ui.Image:
		n.Props["url"] = rn.text(scope, v.URL)
		setIf(n.Props, "fit", v.Fit)
		setIf(n.Props, "width", v.Width)
		setIf(n.Props, "usageHint", v.UsageHint)
	case *a2ui.Icon:
		n.Props["name"] = rn.text(scope, v.Name)
	case *a2ui.Button:
		n.Props["action"] = v.Action.Name
		if v.Primary {
			n.Props["primary"] = true
		}
		children = []string{v.Child}
	case *a2ui.TextField:
		n.Props["label"] = rn.text(scope, v.Label)
		n.Props["text"] = ""
		if v.Text != nil {
			n.Props["text"] = rn.text(scope, *v.Text)
			if v.Text.IsPath() {
				n.Props["bindsTo"] = scope.Abs(v.Text.Path)
			}
		}
		setIf(n.Props, "textFieldType", v.TextFieldType)
		setIf(n.Props, "validationRegexp", v.ValidationRegexp)
	case *a2ui.MultipleChoice:
		n.Props["selections"] = rn.s.data.ResolveValue(scope, v.Selections)
		if v.Selections.IsPath() {
			n.Props["bindsTo"] = scope.Abs(v.Selections.Path)
		}
		opts := make([]map[string]any, 0, len(v.Options))
		for _, o := range v.Options {
			opts = append(opts, map[string]any{"label": rn.text(scope, o.Label), "value": o.Value})
		}
		n.Props["options"] = opts
		if v.MaxAllowedSelections != nil {
			n.Props["maxAllowedSelections"] = *v.MaxAllowedSelections
		}
	case *a2ui.Modal:
		children = []string{v.EntryPointChild, v.ContentChild}
	case *a2ui.Divider:
		setIf(n.Props, "axis", v.Axis)
	}

	for _, child := range children {
		if err := rn.appendChild(n, child, scope, stack); err != nil {
			return nil, err
		}
	}
	if len(n.Props) == 0 {
		n.Props = nil
	}
	return n, nil
}

// withChildren renders a container's explicit list in order, or one
// template instance per element of the bound list, each scoped to its
// element.
func (rn *renderer) withChildren(n *Node, ch a2ui.Children, scope datamodel.Scope, stack []string) (*Node, error) {
	if len(n.Props) == 0 {
		n.Props = nil
	}
	if ch.Template == nil {
		for _, child := range ch.ExplicitList {
			if err := rn.appendChild(n, child, scope, stack); err != nil {
				return nil, err
			}
		}
		return n, nil
	}

	elems := rn.s.data.Elements(scope, ch.Template.DataBinding)
	if len(elems) == 0 {
		clog.FromContext(rn.ctx).With("surface", rn.s.ID).With("binding", scope.Abs(ch.Template.DataBinding)).
			Debug("Template binding has no elements")
	}
	for _, elem := range elems {
		if err := rn.appendChild(n, ch.Template.ComponentID, elem, stack); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (rn *renderer) appendChild(n *Node, id string, scope datamodel.Scope, stack []string) error {
	if _, ok := rn.s.components[id]; !ok {
		clog.FromContext(rn.ctx).With("surface", rn.s.ID).With("parent", n.ID).With("child", id).
			Warn("Skipping undefined child component")
		return nil
	}
	child, err := rn.node(id, scope, stack)
	if err != nil {
		return err
	}
	n.Children = append(n.Children, child)
	return nil
}

// text resolves a bound value to display text, logging unresolved paths.
func (rn *renderer) text(scope datamodel.Scope, v a2ui.BoundValue) string {
	if _, ok := rn.s.data.Lookup(scope, v); !ok && v.IsPath() {
		clog.FromContext(rn.ctx).With("surface", rn.s.ID).With("path", scope.Abs(v.Path)).Debug("Unresolved path")
	}
	return rn.s.data.ResolveString(scope, v)
}

func setIf(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}
