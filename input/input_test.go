package input

import (
	"reflect"
	"testing"
)

func TestGetString(t *testing.T) {
	m := map[string]any{"name": "jsmith", "count": 3, "nothing": nil}

	tests := []struct {
		key        string
		defaultVal string
		want       string
	}{
		{"name", "x", "jsmith"},
		{"missing", "x", "x"},
		{"count", "x", "x"},
		{"nothing", "x", "x"},
	}

	for _, tt := range tests {
		if got := GetString(m, tt.key, tt.defaultVal); got != tt.want {
			t.Errorf("GetString(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if got := GetString(nil, "name", "x"); got != "x" {
		t.Errorf("GetString(nil map) = %q, want %q", got, "x")
	}
}

func TestGetInt(t *testing.T) {
	m := map[string]any{
		"int":     5,
		"int64":   int64(6),
		"float":   7.0,
		"string":  "8",
		"garbage": "eight",
	}

	tests := []struct {
		key  string
		want int
	}{
		{"int", 5},
		{"int64", 6},
		{"float", 7},
		{"string", 8},
		{"garbage", -1},
		{"missing", -1},
	}

	for _, tt := range tests {
		if got := GetInt(m, tt.key, -1); got != tt.want {
			t.Errorf("GetInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestGetBool(t *testing.T) {
	m := map[string]any{"b": true, "s": "true", "bad": "yep"}

	if !GetBool(m, "b", false) {
		t.Error("GetBool(b) = false, want true")
	}
	if !GetBool(m, "s", false) {
		t.Error("GetBool(s) = false, want true")
	}
	if GetBool(m, "bad", false) {
		t.Error("GetBool(bad) = true, want default false")
	}
	if !GetBool(m, "missing", true) {
		t.Error("GetBool(missing) = false, want default true")
	}
}

func TestGetAnyMap(t *testing.T) {
	m := map[string]any{
		"nested": map[string]any{"a": 1},
		"scalar": "x",
	}

	if got := GetAnyMap(m, "nested"); got == nil || got["a"] != 1 {
		t.Errorf("GetAnyMap(nested) = %v", got)
	}
	if got := GetAnyMap(m, "scalar"); got != nil {
		t.Errorf("GetAnyMap(scalar) = %v, want nil", got)
	}
	if got := GetAnyMap(m, "missing"); got != nil {
		t.Errorf("GetAnyMap(missing) = %v, want nil", got)
	}
}

func TestGetMapSlice(t *testing.T) {
	m := map[string]any{
		"rules": []any{
			map[string]any{"name": "a"},
			"not a map",
			map[string]any{"name": "b"},
		},
		"scalar": "x",
	}

	got := GetMapSlice(m, "rules")
	want := []map[string]any{{"name": "a"}, {"name": "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetMapSlice(rules) = %v, want %v", got, want)
	}

	if got := GetMapSlice(m, "scalar"); got != nil {
		t.Errorf("GetMapSlice(scalar) = %v, want nil", got)
	}
}

func TestIntMap(t *testing.T) {
	m := map[string]any{
		"a":       float64(10),
		"b":       "11",
		"garbage": "x",
	}

	got := IntMap(m)
	want := map[string]int{"a": 10, "b": 11}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IntMap = %v, want %v", got, want)
	}
}
