// Package input provides type-safe helpers for extracting values from the
// map[string]any payloads the host runtime hands the connector: source
// configuration, persisted state blobs, and update change operations.
//
// JSON unmarshaling makes numeric types unpredictable (float64, int, or
// string); all functions coerce where safe, return the caller's default on
// mismatch, and handle nil maps gracefully.
package input

import (
	"math"
	"strconv"
)

// GetString extracts a string value from the map with a default fallback.
// Returns defaultVal if the key doesn't exist, the value is nil, or not a
// string.
func GetString(m map[string]any, key string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}

	val, ok := m[key]
	if !ok || val == nil {
		return defaultVal
	}

	str, ok := val.(string)
	if !ok {
		return defaultVal
	}
	return str
}

// GetInt extracts an int value from the map with type coercion and a
// default fallback. Handles int, int64, float64, and numeric strings.
func GetInt(m map[string]any, key string, defaultVal int) int {
	if m == nil {
		return defaultVal
	}

	val, ok := m[key]
	if !ok || val == nil {
		return defaultVal
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// GetBool extracts a bool value from the map with a default fallback.
// String forms "true" and "false" are accepted.
func GetBool(m map[string]any, key string, defaultVal bool) bool {
	if m == nil {
		return defaultVal
	}

	val, ok := m[key]
	if !ok || val == nil {
		return defaultVal
	}

	switch v := val.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetAnyMap extracts a nested map value. Returns nil if the key doesn't
// exist or the value is not a map.
func GetAnyMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}

	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}

	nested, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	return nested
}

// GetMapSlice extracts a slice of maps, the shape rule definitions and
// change operations arrive in. Entries that are not maps are dropped.
func GetMapSlice(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}

	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}

	items, ok := val.([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if entry, ok := item.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}

// IntMap coerces a whole map to name→int, the shape the persisted counter
// state blob arrives in after a JSON round-trip. Entries that cannot be
// coerced are dropped.
func IntMap(m map[string]any) map[string]int {
	out := make(map[string]int, len(m))
	for key := range m {
		if v := GetInt(m, key, math.MinInt); v != math.MinInt {
			out[key] = v
		}
	}
	return out
}
