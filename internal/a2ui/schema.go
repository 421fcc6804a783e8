package a2ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaID is the $id of the envelope schema.
const SchemaID = "https://github.com/cexll/ideas-portal/internal/a2ui/envelope"

// JSONSchemaExtend marks the envelope as a single-key object.
func (Envelope) JSONSchemaExtend(s *jsonschema.Schema) { singleKey(s) }

// JSONSchemaExtend marks the component spec as a single-key object.
func (ComponentSpec) JSONSchemaExtend(s *jsonschema.Schema) { singleKey(s) }

// JSONSchemaExtend marks a bound value as a single-key object.
func (BoundValue) JSONSchemaExtend(s *jsonschema.Schema) { singleKey(s) }

// JSONSchemaExtend relaxes the key requirement: list elements carry none.
func (DataEntry) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Required = nil
	two := uint64(2)
	s.MaxProperties = &two
}

func singleKey(s *jsonschema.Schema) {
	one := uint64(1)
	s.MinProperties = &one
	s.MaxProperties = &one
}

var reflectSchema = sync.OnceValues(func() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&Envelope{})
	s.Title = "A2UI message"
	s.Description = "One of beginRendering, surfaceUpdate or dataModelUpdate."
	return json.MarshalIndent(s, "", "  ")
})

// Schema returns the JSON Schema of a single message envelope.
func Schema() ([]byte, error) {
	return reflectSchema()
}

var compiledSchema = sync.OnceValues(func() (*validator.Schema, error) {
	raw, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("reflect schema: %w", err)
	}
	c := validator.NewCompiler()
	c.Draft = validator.Draft2020
	if err := c.AddResource(SchemaID, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(SchemaID)
})

// ValidateJSON validates every element of a JSON message array against the
// envelope schema.
func ValidateJSON(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return fmt.Errorf("%w: message list is not a JSON array: %v", ErrInvalidMessage, err)
	}
	for i, elem := range elems {
		if err := schema.Validate(elem); err != nil {
			return fmt.Errorf("%w: message %d: %v", ErrInvalidMessage, i, err)
		}
	}
	return nil
}
