// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package rawjson reads fields out of semi-structured records.
//
// Records arriving from the storage boundary are JSON-decoded into
// map[string]any, but their shapes drift: sub-lists arrive either as
// native arrays or as JSON-encoded strings, numerics arrive as strings,
// booleans arrive as SQLite 0/1 integers, and optional fields are
// simply missing. Every accessor in this package is total — wrong
// shapes report absence (an ok=false return or a zero value), never an
// error or a panic — so record normalization can state each field's
// acceptance rule exactly once and degrade per field instead of
// rejecting whole records.
package rawjson

import (
	"encoding/json"
	"strings"
)

// List interprets a value as an ordered list. Accepts a native []any
// directly, or a string containing a JSON-encoded array (the
// stringified sub-field shape the storage boundary produces). Returns
// ok=false for nil, non-list JSON, unparseable strings, and every
// other shape.
func List(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, false
		}
		list, ok := decoded.([]any)
		return list, ok
	default:
		return nil, false
	}
}

// Object interprets a value as a key/value record. Accepts a native
// map[string]any or a string containing a JSON-encoded object.
func Object(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, false
		}
		object, ok := decoded.(map[string]any)
		return object, ok
	default:
		return nil, false
	}
}

// Text returns the named field if it is a string.
func Text(record map[string]any, key string) (string, bool) {
	s, ok := record[key].(string)
	return s, ok
}

// TrimmedText returns the named field trimmed of surrounding
// whitespace, and ok only when the result is non-empty. This is the
// acceptance rule for optional identifier fields: a present-but-blank
// value counts as absent.
func TrimmedText(record map[string]any, key string) (string, bool) {
	s, ok := record[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Number returns the named field if it is numeric. JSON decoding
// produces float64 for all numbers; integer-typed values from other
// decoders are accepted too.
func Number(record map[string]any, key string) (float64, bool) {
	return asNumber(record[key])
}

// Int is Number truncated toward zero.
func Int(record map[string]any, key string) (int, bool) {
	f, ok := asNumber(record[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the named field coerced to a boolean. True booleans and
// nonzero numbers count as true; SQLite stores booleans as 0/1
// integers, so the numeric form is as common as the native one.
// Anything else is false.
func Bool(record map[string]any, key string) bool {
	switch v := record[key].(type) {
	case bool:
		return v
	default:
		if f, ok := asNumber(v); ok {
			return f != 0
		}
		return false
	}
}

// Stringify coerces a value to its string form: strings pass through
// unchanged, absent values become "{}", and everything else is
// compact-JSON encoded. Used for opaque payload fields (tool-call
// args) whose content is not interpreted here.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return "{}"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			// Values reaching here came out of a JSON decoder, so
			// re-encoding cannot fail in practice; fall back to the
			// absent form rather than propagate.
			return "{}"
		}
		return string(encoded)
	}
}

// asNumber recognizes the numeric types produced by the JSON decoder
// and by SQLite column readers.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
