package datamodel

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/cexll/ideas-portal/internal/a2ui"
)

// EntriesFromPayload converts a decoded tool payload into data entries that
// merge like any dataModelUpdate. Objects give one entry per key (sorted),
// arrays give one entry per index, and a scalar gives a single "value"
// entry. JSON null becomes an empty string.
func EntriesFromPayload(v any) []a2ui.DataEntry {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out := make([]a2ui.DataEntry, 0, len(keys))
		for _, k := range keys {
			out = append(out, EntryFor(k, t[k]))
		}
		return out
	case []any:
		out := make([]a2ui.DataEntry, 0, len(t))
		for i, elem := range t {
			out = append(out, EntryFor(strconv.Itoa(i), elem))
		}
		return out
	}
	return []a2ui.DataEntry{EntryFor("value", v)}
}

// EntryFor converts one decoded JSON value into an entry under key. Nested
// arrays become valueList entries so they replace rather than merge.
func EntryFor(key string, v any) a2ui.DataEntry {
	switch t := v.(type) {
	case nil:
		return a2ui.StringEntry(key, "")
	case string:
		return a2ui.StringEntry(key, t)
	case bool:
		return a2ui.BoolEntry(key, t)
	case map[string]any:
		return a2ui.MapEntry(key, EntriesFromPayload(t)...)
	case []any:
		elems := make([]a2ui.DataEntry, 0, len(t))
		for _, elem := range t {
			elems = append(elems, EntryFor("", elem))
		}
		return a2ui.ListEntry(key, elems...)
	}
	if n, ok := toFloat(v); ok {
		return a2ui.NumberEntry(key, n)
	}
	return a2ui.StringEntry(key, fmt.Sprint(v))
}

// UpdateFor plans the merge of a tool payload at path. An array payload
// replaces the list at path, so the entry is keyed by the last segment and
// merged into the parent; anything else merges at path.
func UpdateFor(path string, payload any) (basePath string, entries []a2ui.DataEntry) {
	keys := split(path)
	if arr, ok := payload.([]any); ok && len(keys) > 0 {
		return join(keys[:len(keys)-1]), []a2ui.DataEntry{EntryFor(keys[len(keys)-1], arr)}
	}
	return join(keys), EntriesFromPayload(payload)
}

// fromPayload converts a decoded JSON value into the model's value shape.
func fromPayload(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string, bool:
		return t, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			c, err := fromPayload(child)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make(map[string]any, len(t))
		for i, child := range t {
			c, err := fromPayload(child)
			if err != nil {
				return nil, err
			}
			out[strconv.Itoa(i)] = c
		}
		return out, nil
	case []string:
		out := make(map[string]any, len(t))
		for i, s := range t {
			out[strconv.Itoa(i)] = s
		}
		return out, nil
	}
	if n, ok := toFloat(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
