package types

// SimpleKey identifies an account by a single id value.
type SimpleKey struct {
	ID string `json:"id"`
}

// Key is the account key reported to the host runtime.
type Key struct {
	Simple SimpleKey `json:"simple"`
}

// Account is the output record for one identity on the connector's managed
// source: an identifier, the generated attribute values, and the account
// lifecycle flags.
//
// A freshly assembled account defaults to enabled, not locked, not deleted.
type Account struct {
	Key Key `json:"key"`

	// Disabled reports whether the account is disabled on the source.
	Disabled bool `json:"disabled"`

	// Locked reports whether the account is locked.
	Locked bool `json:"locked,omitempty"`

	// Deleted reports whether the account has been deleted on the source.
	Deleted bool `json:"deleted,omitempty"`

	// Incomplete marks an account whose attribute set is partial.
	Incomplete bool `json:"incomplete,omitempty"`

	// FinalUpdate marks the last update the connector will emit for the
	// account.
	FinalUpdate bool `json:"finalUpdate,omitempty"`

	// Attributes maps attribute names to generated values. Always carries
	// "id" and "name" entries.
	Attributes map[string]any `json:"attributes"`
}

// NewAccount builds an account record around an attribute map. The account
// key is derived from the map's "id" entry.
func NewAccount(attrs map[string]any) Account {
	id, _ := attrs["id"].(string)
	return Account{
		Key:        Key{Simple: SimpleKey{ID: id}},
		Disabled:   false,
		Attributes: attrs,
	}
}

// ID returns the account's identifier.
func (a *Account) ID() string {
	return a.Key.Simple.ID
}
