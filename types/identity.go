package types

// Identity is a record from the external identity directory: a person with
// an identifier, a display name, and arbitrary named attributes.
//
// The attribute map is the working context for rule evaluation. The engine
// injects a transient "counter" entry and writes computed values back, so
// rules later in the configured sequence can reference values produced by
// earlier ones. Rule order is part of the configuration's observable
// behavior.
type Identity struct {
	// ID is the directory identifier for the identity.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Attributes maps attribute names to values.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// HasAttributes reports whether the identity carries an attribute record to
// template against. Identities without one cannot be processed.
func (i *Identity) HasAttributes() bool {
	return i != nil && i.Attributes != nil
}
