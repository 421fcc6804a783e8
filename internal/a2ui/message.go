package a2ui

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned for messages that are structurally invalid:
// zero or several variant keys, missing ids, malformed bound values.
var ErrInvalidMessage = errors.New("invalid a2ui message")

// Message is the closed set of protocol messages: *BeginRendering,
// *SurfaceUpdate and *DataModelUpdate.
type Message interface {
	isMessage()
}

// Styles is the surface-wide style record.
type Styles struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	Font         string `json:"font,omitempty"`
}

// BeginRendering creates (or resets) a surface rooted at Root.
type BeginRendering struct {
	SurfaceID string  `json:"surfaceId"`
	Root      string  `json:"root"`
	Styles    *Styles `json:"styles,omitempty"`
}

// SurfaceUpdate upserts component definitions into a surface.
type SurfaceUpdate struct {
	SurfaceID  string         `json:"surfaceId"`
	Components []ComponentDef `json:"components"`
}

// DataModelUpdate merges Contents into the data model at Path.
type DataModelUpdate struct {
	SurfaceID string      `json:"surfaceId"`
	Path      string      `json:"path,omitempty"`
	Contents  []DataEntry `json:"contents"`
}

func (*BeginRendering) isMessage()  {}
func (*SurfaceUpdate) isMessage()   {}
func (*DataModelUpdate) isMessage() {}

// Message kinds as they appear on the wire.
const (
	KindBeginRendering  = "beginRendering"
	KindSurfaceUpdate   = "surfaceUpdate"
	KindDataModelUpdate = "dataModelUpdate"
)

// SurfaceOf returns the surface id a message targets.
func SurfaceOf(m Message) string {
	switch v := m.(type) {
	case *BeginRendering:
		return v.SurfaceID
	case *SurfaceUpdate:
		return v.SurfaceID
	case *DataModelUpdate:
		return v.SurfaceID
	}
	panic(fmt.Sprintf("a2ui: unhandled message type %T", m))
}

// KindOf returns the wire key of a message.
func KindOf(m Message) string {
	switch m.(type) {
	case *BeginRendering:
		return KindBeginRendering
	case *SurfaceUpdate:
		return KindSurfaceUpdate
	case *DataModelUpdate:
		return KindDataModelUpdate
	}
	panic(fmt.Sprintf("a2ui: unhandled message type %T", m))
}

// Envelope is the single-key wire form of a Message.
type Envelope struct {
	BeginRendering  *BeginRendering  `json:"beginRendering,omitempty"`
	SurfaceUpdate   *SurfaceUpdate   `json:"surfaceUpdate,omitempty"`
	DataModelUpdate *DataModelUpdate `json:"dataModelUpdate,omitempty"`
}

// Wrap returns the wire form of m.
func Wrap(m Message) Envelope {
	switch v := m.(type) {
	case *BeginRendering:
		return Envelope{BeginRendering: v}
	case *SurfaceUpdate:
		return Envelope{SurfaceUpdate: v}
	case *DataModelUpdate:
		return Envelope{DataModelUpdate: v}
	}
	panic(fmt.Sprintf("a2ui: unhandled message type %T", m))
}

// Message validates the envelope and returns its variant.
func (e Envelope) Message() (Message, error) {
	set := 0
	for _, ok := range []bool{e.BeginRendering != nil, e.SurfaceUpdate != nil, e.DataModelUpdate != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: envelope must set exactly one of beginRendering, surfaceUpdate, dataModelUpdate (got %d)", ErrInvalidMessage, set)
	}

	switch {
	case e.BeginRendering != nil:
		m := e.BeginRendering
		if m.SurfaceID == "" {
			return nil, fmt.Errorf("%w: beginRendering: surfaceId is required", ErrInvalidMessage)
		}
		if m.Root == "" {
			return nil, fmt.Errorf("%w: beginRendering %q: root is required", ErrInvalidMessage, m.SurfaceID)
		}
		return m, nil

	case e.SurfaceUpdate != nil:
		m := e.SurfaceUpdate
		if m.SurfaceID == "" {
			return nil, fmt.Errorf("%w: surfaceUpdate: surfaceId is required", ErrInvalidMessage)
		}
		for i, def := range m.Components {
			if def.ID == "" {
				return nil, fmt.Errorf("%w: surfaceUpdate %q: components[%d]: id is required", ErrInvalidMessage, m.SurfaceID, i)
			}
			if _, err := def.Component.Variant(); err != nil {
				return nil, fmt.Errorf("surfaceUpdate %q: component %q: %w", m.SurfaceID, def.ID, err)
			}
		}
		return m, nil

	default:
		m := e.DataModelUpdate
		if m.SurfaceID == "" {
			return nil, fmt.Errorf("%w: dataModelUpdate: surfaceId is required", ErrInvalidMessage)
		}
		for _, entry := range m.Contents {
			if err := entry.validate(false); err != nil {
				return nil, fmt.Errorf("%w: dataModelUpdate %q: %v", ErrInvalidMessage, m.SurfaceID, err)
			}
		}
		return m, nil
	}
}

// DecodeMessages parses a JSON array of envelopes into messages, in order.
func DecodeMessages(raw []byte) ([]Message, error) {
	var envelopes []Envelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, fmt.Errorf("%w: decode message list: %v", ErrInvalidMessage, err)
	}

	msgs := make([]Message, 0, len(envelopes))
	for i, env := range envelopes {
		m, err := env.Message()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// EncodeMessages renders messages as a JSON array of single-key objects.
func EncodeMessages(msgs []Message) ([]byte, error) {
	envelopes := make([]Envelope, 0, len(msgs))
	for _, m := range msgs {
		envelopes = append(envelopes, Wrap(m))
	}
	return json.Marshal(envelopes)
}
