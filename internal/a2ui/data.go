package a2ui

import (
	"encoding/json"
	"fmt"
)

// DataEntry is one key/value pair of a dataModelUpdate. Exactly one value
// field is set. ValueMap nests further entries; ValueList is an ordered list
// whose element keys are ignored and replaced by their index.
type DataEntry struct {
	Key          string      `json:"key"`
	ValueString  *string     `json:"valueString,omitempty"`
	ValueNumber  *float64    `json:"valueNumber,omitempty"`
	ValueBoolean *bool       `json:"valueBoolean,omitempty"`
	ValueMap     []DataEntry `json:"valueMap,omitempty"`
	ValueList    []DataEntry `json:"valueList,omitempty"`
}

// StringEntry returns an entry holding a string.
func StringEntry(key, value string) DataEntry {
	return DataEntry{Key: key, ValueString: &value}
}

// NumberEntry returns an entry holding a number.
func NumberEntry(key string, value float64) DataEntry {
	return DataEntry{Key: key, ValueNumber: &value}
}

// BoolEntry returns an entry holding a boolean.
func BoolEntry(key string, value bool) DataEntry {
	return DataEntry{Key: key, ValueBoolean: &value}
}

// MapEntry returns an entry holding a nested map.
func MapEntry(key string, entries ...DataEntry) DataEntry {
	if entries == nil {
		entries = []DataEntry{}
	}
	return DataEntry{Key: key, ValueMap: entries}
}

// ListEntry returns an entry holding an ordered list.
func ListEntry(key string, elems ...DataEntry) DataEntry {
	if elems == nil {
		elems = []DataEntry{}
	}
	return DataEntry{Key: key, ValueList: elems}
}

// MarshalJSON writes the key and the single populated value field. Empty
// maps and lists are kept, unlike plain omitempty encoding.
func (e DataEntry) MarshalJSON() ([]byte, error) {
	out := map[string]any{"key": e.Key}
	switch {
	case e.ValueString != nil:
		out["valueString"] = *e.ValueString
	case e.ValueNumber != nil:
		out["valueNumber"] = *e.ValueNumber
	case e.ValueBoolean != nil:
		out["valueBoolean"] = *e.ValueBoolean
	case e.ValueMap != nil:
		out["valueMap"] = e.ValueMap
	case e.ValueList != nil:
		out["valueList"] = e.ValueList
	}
	return json.Marshal(out)
}

func (e DataEntry) validate(listElement bool) error {
	if e.Key == "" && !listElement {
		return fmt.Errorf("data entry key is required")
	}
	set := 0
	for _, ok := range []bool{e.ValueString != nil, e.ValueNumber != nil, e.ValueBoolean != nil, e.ValueMap != nil, e.ValueList != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("data entry %q must set exactly one value field (got %d)", e.Key, set)
	}
	for _, child := range e.ValueMap {
		if err := child.validate(false); err != nil {
			return fmt.Errorf("%s: %w", e.Key, err)
		}
	}
	for i, child := range e.ValueList {
		if err := child.validate(true); err != nil {
			return fmt.Errorf("%s[%d]: %w", e.Key, i, err)
		}
	}
	return nil
}
