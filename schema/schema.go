// Package schema defines the JSON schema shapes the connector reports to
// the host runtime during schema discovery, plus the small amount of value
// validation configuration loading needs.
package schema

import (
	"fmt"

	"github.com/identitykit/genattr/rule"
)

// JSON represents a JSON Schema definition.
type JSON struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Items       *JSON           `json:"items,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	Default     any             `json:"default,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	Format      string          `json:"format,omitempty"`
}

// String creates a JSON schema for a string type.
func String() JSON {
	return JSON{Type: "string"}
}

// StringWithDesc creates a JSON schema for a string type with a description.
func StringWithDesc(desc string) JSON {
	return JSON{
		Type:        "string",
		Description: desc,
	}
}

// Bool creates a JSON schema for a boolean type.
func Bool() JSON {
	return JSON{Type: "boolean"}
}

// Int creates a JSON schema for an integer type.
func Int() JSON {
	return JSON{Type: "integer"}
}

// Object creates a JSON schema for an object type with the specified
// properties and required fields.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Enum creates a JSON schema with enumerated values.
func Enum(values ...any) JSON {
	return JSON{Enum: values}
}

// Validate validates the given value against this JSON schema. Only the
// shapes the connector actually reports are supported: strings, booleans,
// integers, enums, and flat objects.
func (s JSON) Validate(value any) error {
	if value == nil {
		if s.Type != "" {
			return fmt.Errorf("expected type %s, got nil", s.Type)
		}
		return nil
	}

	if len(s.Enum) > 0 {
		for _, allowed := range s.Enum {
			if value == allowed {
				return nil
			}
		}
		return fmt.Errorf("value %v is not one of the allowed values", value)
	}

	switch s.Type {
	case "":
		return nil
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if s.MinLength != nil && len(str) < *s.MinLength {
			return fmt.Errorf("string length %d below minimum %d", len(str), *s.MinLength)
		}
		if s.MaxLength != nil && len(str) > *s.MaxLength {
			return fmt.Errorf("string length %d above maximum %d", len(str), *s.MaxLength)
		}
		return nil
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
		return nil
	case "integer":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		case float64:
			f := value.(float64)
			if f != float64(int64(f)) {
				return fmt.Errorf("expected integer, got fractional number %v", f)
			}
			return nil
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("missing required property %q", name)
			}
		}
		for name, prop := range s.Properties {
			v, present := obj[name]
			if !present {
				continue
			}
			if err := prop.Validate(v); err != nil {
				return fmt.Errorf("property %q: %w", name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported schema type %q", s.Type)
	}
}

// Account builds the discovered account schema for a rule set: the id and
// name fields every account carries, plus one string-typed field per
// configured rule.
func Account(rules rule.Set) JSON {
	properties := map[string]JSON{
		"id":   StringWithDesc("Account identifier"),
		"name": StringWithDesc("Account display name"),
	}
	for _, name := range rules.Names() {
		properties[name] = StringWithDesc(name)
	}
	return Object(properties, "id", "name")
}
