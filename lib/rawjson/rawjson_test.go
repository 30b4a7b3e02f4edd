// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package rawjson

import (
	"reflect"
	"testing"
)

func TestList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		want   []any
		wantOK bool
	}{
		{"native list", []any{"a", "b"}, []any{"a", "b"}, true},
		{"empty native list", []any{}, []any{}, true},
		{"json string list", `["a","b"]`, []any{"a", "b"}, true},
		{"json string nested", `[{"x":1}]`, []any{map[string]any{"x": float64(1)}}, true},
		{"json string object", `{"x":1}`, nil, false},
		{"json string scalar", `42`, nil, false},
		{"unparseable string", `[broken`, nil, false},
		{"empty string", "", nil, false},
		{"nil", nil, nil, false},
		{"number", float64(3), nil, false},
		{"bool", true, nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, ok := List(test.value)
			if ok != test.wantOK {
				t.Fatalf("List(%v) ok = %v, want %v", test.value, ok, test.wantOK)
			}
			if ok && !reflect.DeepEqual(got, test.want) {
				t.Errorf("List(%v) = %v, want %v", test.value, got, test.want)
			}
		})
	}
}

func TestObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		wantOK bool
	}{
		{"native map", map[string]any{"k": "v"}, true},
		{"json string object", `{"k":"v"}`, true},
		{"json string list", `[1,2]`, false},
		{"garbage string", "nope", false},
		{"nil", nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, ok := Object(test.value)
			if ok != test.wantOK {
				t.Errorf("Object(%v) ok = %v, want %v", test.value, ok, test.wantOK)
			}
		})
	}
}

func TestTrimmedText(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"padded":  "  run-7  ",
		"blank":   "   ",
		"empty":   "",
		"numeric": float64(7),
	}

	if got, ok := TrimmedText(record, "padded"); !ok || got != "run-7" {
		t.Errorf("TrimmedText(padded) = %q, %v, want %q, true", got, ok, "run-7")
	}
	for _, key := range []string{"blank", "empty", "numeric", "missing"} {
		if got, ok := TrimmedText(record, key); ok {
			t.Errorf("TrimmedText(%s) = %q, ok=true, want absent", key, got)
		}
	}
}

func TestNumberAndInt(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"float":   float64(2.5),
		"int64":   int64(9),
		"string":  "3",
		"boolean": true,
	}

	if got, ok := Number(record, "float"); !ok || got != 2.5 {
		t.Errorf("Number(float) = %v, %v, want 2.5, true", got, ok)
	}
	if got, ok := Int(record, "float"); !ok || got != 2 {
		t.Errorf("Int(float) = %v, %v, want 2, true", got, ok)
	}
	if got, ok := Int(record, "int64"); !ok || got != 9 {
		t.Errorf("Int(int64) = %v, %v, want 9, true", got, ok)
	}
	// Numeric strings are not numbers: acceptance rules are per-shape,
	// not per-parseability.
	if _, ok := Number(record, "string"); ok {
		t.Error("Number(string) accepted a string value")
	}
	if _, ok := Number(record, "boolean"); ok {
		t.Error("Number(boolean) accepted a bool value")
	}
	if _, ok := Number(record, "missing"); ok {
		t.Error("Number(missing) reported a value for an absent key")
	}
}

func TestBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"one", float64(1), true},
		{"zero", float64(0), false},
		{"int64 nonzero", int64(2), true},
		{"string", "true", false},
		{"nil", nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			record := map[string]any{"flag": test.value}
			if got := Bool(record, "flag"); got != test.want {
				t.Errorf("Bool(%v) = %v, want %v", test.value, got, test.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string passthrough", `{"already":"encoded"}`, `{"already":"encoded"}`},
		{"absent", nil, "{}"},
		{"object", map[string]any{"path": "a.md"}, `{"path":"a.md"}`},
		{"number", float64(42), "42"},
		{"list", []any{"x"}, `["x"]`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := Stringify(test.value); got != test.want {
				t.Errorf("Stringify(%v) = %q, want %q", test.value, got, test.want)
			}
		})
	}
}
