package a2ui

import "fmt"

// BoundValue is an attribute that is either a literal or a data model path.
// Relative paths resolve against the scope of the component instance that
// carries them (see datamodel.Scope).
type BoundValue struct {
	LiteralString  *string  `json:"literalString,omitempty"`
	LiteralNumber  *float64 `json:"literalNumber,omitempty"`
	LiteralBoolean *bool    `json:"literalBoolean,omitempty"`
	Path           string   `json:"path,omitempty"`
}

// LiteralText returns a BoundValue holding a literal string.
func LiteralText(s string) BoundValue {
	return BoundValue{LiteralString: &s}
}

// LiteralNum returns a BoundValue holding a literal number.
func LiteralNum(n float64) BoundValue {
	return BoundValue{LiteralNumber: &n}
}

// LiteralBool returns a BoundValue holding a literal boolean.
func LiteralBool(b bool) BoundValue {
	return BoundValue{LiteralBoolean: &b}
}

// PathTo returns a BoundValue bound to a data model path.
func PathTo(path string) BoundValue {
	return BoundValue{Path: path}
}

// IsPath reports whether the value is bound by path.
func (b BoundValue) IsPath() bool {
	return b.Path != ""
}

// Literal returns the literal payload, if any.
func (b BoundValue) Literal() (any, bool) {
	switch {
	case b.LiteralString != nil:
		return *b.LiteralString, true
	case b.LiteralNumber != nil:
		return *b.LiteralNumber, true
	case b.LiteralBoolean != nil:
		return *b.LiteralBoolean, true
	}
	return nil, false
}

func (b BoundValue) validate() error {
	set := 0
	for _, ok := range []bool{b.LiteralString != nil, b.LiteralNumber != nil, b.LiteralBoolean != nil, b.Path != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("bound value must set exactly one of literalString, literalNumber, literalBoolean, path (got %d)", set)
	}
	return nil
}

// Action is the interaction attached to a Button. Context values are
// resolved against the data model when the action fires.
type Action struct {
	Name    string               `json:"name"`
	Context []ActionContextEntry `json:"context,omitempty"`
}

// ActionContextEntry is one named value forwarded with an action.
type ActionContextEntry struct {
	Key   string     `json:"key"`
	Value BoundValue `json:"value"`
}

func (a Action) validate() error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	for i, entry := range a.Context {
		if entry.Key == "" {
			return fmt.Errorf("action %q context[%d]: key is required", a.Name, i)
		}
		if err := entry.Value.validate(); err != nil {
			return fmt.Errorf("action %q context %q: %w", a.Name, entry.Key, err)
		}
	}
	return nil
}
