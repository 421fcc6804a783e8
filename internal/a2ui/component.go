package a2ui

import (
	"errors"
	"fmt"
)

// Kind names a component variant exactly as it appears on the wire.
type Kind string

const (
	KindColumn         Kind = "Column"
	KindRow            Kind = "Row"
	KindList           Kind = "List"
	KindCard           Kind = "Card"
	KindText           Kind = "Text"
	KindHeading        Kind = "Heading"
	KindImage          Kind = "Image"
	KindIcon           Kind = "Icon"
	KindButton         Kind = "Button"
	KindTextField      Kind = "TextField"
	KindMultipleChoice Kind = "MultipleChoice"
	KindModal          Kind = "Modal"
	KindDivider        Kind = "Divider"
)

// Component is the closed set of component variants. Only the types in this
// file implement it.
type Component interface {
	Kind() Kind
	// ChildRefs lists every component id this component refers to, including
	// a template's component id.
	ChildRefs() []string
	validate() error
	isComponent()
}

// Children is either an explicit ordered list of child ids or a template
// expanded once per element of the list found at DataBinding.
type Children struct {
	ExplicitList []string  `json:"explicitList,omitempty"`
	Template     *Template `json:"template,omitempty"`
}

// Template instantiates ComponentID once per element at DataBinding.
type Template struct {
	ComponentID string `json:"componentId"`
	DataBinding string `json:"dataBinding"`
}

// Explicit returns Children holding an explicit id list.
func Explicit(ids ...string) Children {
	if ids == nil {
		ids = []string{}
	}
	return Children{ExplicitList: ids}
}

// FromTemplate returns Children expanded from a template.
func FromTemplate(componentID, dataBinding string) Children {
	return Children{Template: &Template{ComponentID: componentID, DataBinding: dataBinding}}
}

func (c Children) refs() []string {
	if c.Template != nil {
		return []string{c.Template.ComponentID}
	}
	return c.ExplicitList
}

func (c Children) validate() error {
	if (c.ExplicitList != nil) == (c.Template != nil) {
		return errors.New("children must set exactly one of explicitList, template")
	}
	if c.Template != nil {
		if c.Template.ComponentID == "" {
			return errors.New("template componentId is required")
		}
		if c.Template.DataBinding == "" {
			return errors.New("template dataBinding is required")
		}
	}
	return nil
}

// Column lays out children vertically.
type Column struct {
	Children     Children `json:"children"`
	Alignment    string   `json:"alignment,omitempty"`
	Distribution string   `json:"distribution,omitempty"`
}

// Row lays out children horizontally.
type Row struct {
	Children     Children `json:"children"`
	Alignment    string   `json:"alignment,omitempty"`
	Distribution string   `json:"distribution,omitempty"`
}

// List is a scrollable sequence of children.
type List struct {
	Children  Children `json:"children"`
	Direction string   `json:"direction,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
}

// Card frames a single child.
type Card struct {
	Child string `json:"child"`
}

// Text displays a string.
type Text struct {
	Text      BoundValue `json:"text"`
	UsageHint string     `json:"usageHint,omitempty"`
}

// Heading displays a title at the given level.
type Heading struct {
	Text  BoundValue `json:"text"`
	Level string     `json:"level,omitempty"`
}

// Image displays a picture from a URL.
type Image struct {
	URL       BoundValue `json:"url"`
	Fit       string     `json:"fit,omitempty"`
	Width     string     `json:"width,omitempty"`
	UsageHint string     `json:"usageHint,omitempty"`
}

// Icon displays a named icon.
type Icon struct {
	Name BoundValue `json:"name"`
}

// Button renders Child and fires Action when pressed.
type Button struct {
	Child   string `json:"child"`
	Primary bool   `json:"primary,omitempty"`
	Action  Action `json:"action"`
}

// TextField edits the string at Text's path.
type TextField struct {
	Label            BoundValue  `json:"label"`
	Text             *BoundValue `json:"text,omitempty"`
	TextFieldType    string      `json:"textFieldType,omitempty"`
	ValidationRegexp string      `json:"validationRegexp,omitempty"`
}

// MultipleChoice edits the list at Selections' path.
type MultipleChoice struct {
	Selections           BoundValue     `json:"selections"`
	Options              []ChoiceOption `json:"options"`
	MaxAllowedSelections *int           `json:"maxAllowedSelections,omitempty"`
}

// ChoiceOption is one selectable value.
type ChoiceOption struct {
	Label BoundValue `json:"label"`
	Value string     `json:"value"`
}

// Modal shows ContentChild in an overlay opened from EntryPointChild.
type Modal struct {
	EntryPointChild string `json:"entryPointChild"`
	ContentChild    string `json:"contentChild"`
}

// Divider separates siblings.
type Divider struct {
	Axis string `json:"axis,omitempty"`
}

func (*Column) Kind() Kind         { return KindColumn }
func (*Row) Kind() Kind            { return KindRow }
func (*List) Kind() Kind           { return KindList }
func (*Card) Kind() Kind           { return KindCard }
func (*Text) Kind() Kind           { return KindText }
func (*Heading) Kind() Kind        { return KindHeading }
func (*Image) Kind() Kind          { return KindImage }
func (*Icon) Kind() Kind           { return KindIcon }
func (*Button) Kind() Kind         { return KindButton }
func (*TextField) Kind() Kind      { return KindTextField }
func (*MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (*Modal) Kind() Kind          { return KindModal }
func (*Divider) Kind() Kind        { return KindDivider }

func (c *Column) ChildRefs() []string       { return c.Children.refs() }
func (c *Row) ChildRefs() []string          { return c.Children.refs() }
func (c *List) ChildRefs() []string         { return c.Children.refs() }
func (c *Card) ChildRefs() []string         { return []string{c.Child} }
func (*Text) ChildRefs() []string           { return nil }
func (*Heading) ChildRefs() []string        { return nil }
func (*Image) ChildRefs() []string          { return nil }
func (*Icon) ChildRefs() []string           { return nil }
func (c *Button) ChildRefs() []string       { return []string{c.Child} }
func (*TextField) ChildRefs() []string      { return nil }
func (*MultipleChoice) ChildRefs() []string { return nil }
func (c *Modal) ChildRefs() []string        { return []string{c.EntryPointChild, c.ContentChild} }
func (*Divider) ChildRefs() []string        { return nil }

func (c *Column) validate() error { return c.Children.validate() }
func (c *Row) validate() error    { return c.Children.validate() }
func (c *List) validate() error   { return c.Children.validate() }

func (c *Card) validate() error {
	if c.Child == "" {
		return errors.New("card child is required")
	}
	return nil
}

func (c *Text) validate() error    { return c.Text.validate() }
func (c *Heading) validate() error { return c.Text.validate() }
func (c *Image) validate() error   { return c.URL.validate() }
func (c *Icon) validate() error    { return c.Name.validate() }

func (c *Button) validate() error {
	if c.Child == "" {
		return errors.New("button child is required")
	}
	return c.Action.validate()
}

func (c *TextField) validate() error {
	if err := c.Label.validate(); err != nil {
		return fmt.Errorf("label: %w", err)
	}
	if c.Text != nil {
		if err := c.Text.validate(); err != nil {
			return fmt.Errorf("text: %w", err)
		}
	}
	return nil
}

func (c *MultipleChoice) validate() error {
	if err := c.Selections.validate(); err != nil {
		return fmt.Errorf("selections: %w", err)
	}
	for i, opt := range c.Options {
		if err := opt.Label.validate(); err != nil {
			return fmt.Errorf("options[%d] label: %w", i, err)
		}
	}
	return nil
}

func (c *Modal) validate() error {
	if c.EntryPointChild == "" || c.ContentChild == "" {
		return errors.New("modal entryPointChild and contentChild are required")
	}
	return nil
}

func (*Divider) validate() error { return nil }

func (*Column) isComponent()         {}
func (*Row) isComponent()            {}
func (*List) isComponent()           {}
func (*Card) isComponent()           {}
func (*Text) isComponent()           {}
func (*Heading) isComponent()        {}
func (*Image) isComponent()          {}
func (*Icon) isComponent()           {}
func (*Button) isComponent()         {}
func (*TextField) isComponent()      {}
func (*MultipleChoice) isComponent() {}
func (*Modal) isComponent()          {}
func (*Divider) isComponent()        {}

// ComponentSpec is the single-key wire form of a Component.
type ComponentSpec struct {
	Column         *Column         `json:"Column,omitempty"`
	Row            *Row            `json:"Row,omitempty"`
	List           *List           `json:"List,omitempty"`
	Card           *Card           `json:"Card,omitempty"`
	Text           *Text           `json:"Text,omitempty"`
	Heading        *Heading        `json:"Heading,omitempty"`
	Image          *Image          `json:"Image,omitempty"`
	Icon           *Icon           `json:"Icon,omitempty"`
	Button         *Button         `json:"Button,omitempty"`
	TextField      *TextField      `json:"TextField,omitempty"`
	MultipleChoice *MultipleChoice `json:"MultipleChoice,omitempty"`
	Modal          *Modal          `json:"Modal,omitempty"`
	Divider        *Divider        `json:"Divider,omitempty"`
}

// Variant returns the single variant set on the spec.
func (s ComponentSpec) Variant() (Component, error) {
	var found []Component
	add := func(ok bool, c Component) {
		if ok {
			found = append(found, c)
		}
	}
	add(s.Column != nil, s.Column)
	add(s.Row != nil, s.Row)
	add(s.List != nil, s.List)
	add(s.Card != nil, s.Card)
	add(s.Text != nil, s.Text)
	add(s.Heading != nil, s.Heading)
	add(s.Image != nil, s.Image)
	add(s.Icon != nil, s.Icon)
	add(s.Button != nil, s.Button)
	add(s.TextField != nil, s.TextField)
	add(s.MultipleChoice != nil, s.MultipleChoice)
	add(s.Modal != nil, s.Modal)
	add(s.Divider != nil, s.Divider)

	if len(found) != 1 {
		return nil, fmt.Errorf("%w: component must set exactly one variant (got %d)", ErrInvalidMessage, len(found))
	}
	if err := found[0].validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, found[0].Kind(), err)
	}
	return found[0], nil
}

// SpecOf wraps a Component into its wire form.
func SpecOf(c Component) ComponentSpec {
	switch v := c.(type) {
	case *Column:
		return ComponentSpec{Column: v}
	case *Row:
		return ComponentSpec{Row: v}
	case *List:
		return ComponentSpec{List: v}
	case *Card:
		return ComponentSpec{Card: v}
	case *Text:
		return ComponentSpec{Text: v}
	case *Heading:
		return ComponentSpec{Heading: v}
	case *Image:
		return ComponentSpec{Image: v}
	case *Icon:
		return ComponentSpec{Icon: v}
	case *Button:
		return ComponentSpec{Button: v}
	case *TextField:
		return ComponentSpec{TextField: v}
	case *MultipleChoice:
		return ComponentSpec{MultipleChoice: v}
	case *Modal:
		return ComponentSpec{Modal: v}
	case *Divider:
		return ComponentSpec{Divider: v}
	}
	panic(fmt.Sprintf("a2ui: unhandled component type %T", c))
}

// ComponentDef binds a component id to its definition.
type ComponentDef struct {
	ID        string        `json:"id"`
	Component ComponentSpec `json:"component"`
}

// Def is shorthand for building a ComponentDef from a variant.
func Def(id string, c Component) ComponentDef {
	return ComponentDef{ID: id, Component: SpecOf(c)}
}
