package rule

import (
	"errors"
	"fmt"
)

// Kind is the generation strategy tag for a rule. It is a closed variant:
// validation rejects anything outside the four declared values, so a new
// kind cannot silently fall through a switch.
type Kind string

const (
	// KindNormal evaluates the expression once, no counter or uniqueness
	// involvement.
	KindNormal Kind = "normal"

	// KindCounter draws a value from the rule's persistent counter sequence
	// and exposes it to the expression as the counter variable.
	KindCounter Kind = "counter"

	// KindUnique evaluates the expression and retries with an ephemeral
	// counter until the value collides with nothing already emitted.
	KindUnique Kind = "unique"

	// KindUUID generates a random UUID; the expression is ignored.
	KindUUID Kind = "uuid"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a recognized value.
func (k Kind) IsValid() bool {
	switch k {
	case KindNormal, KindCounter, KindUnique, KindUUID:
		return true
	default:
		return false
	}
}

// Case selects the case transformation applied to a rendered value.
type Case string

const (
	// CaseSame leaves the value unchanged.
	CaseSame Case = "same"

	// CaseLower lowercases the whole value.
	CaseLower Case = "lower"

	// CaseUpper uppercases the whole value.
	CaseUpper Case = "upper"

	// CaseCapitalize uppercases the first letter of each space-separated
	// word and leaves the rest of each word unchanged.
	CaseCapitalize Case = "capitalize"
)

// IsValid returns true if the case mode is recognized. The empty string is
// accepted and treated as CaseSame.
func (c Case) IsValid() bool {
	switch c {
	case "", CaseSame, CaseLower, CaseUpper, CaseCapitalize:
		return true
	default:
		return false
	}
}

// Rule is the configured specification for deriving one account attribute.
type Rule struct {
	// Name is the attribute name, unique within a rule set.
	Name string `yaml:"name" json:"name"`

	// Kind selects the generation strategy.
	Kind Kind `yaml:"kind" json:"kind"`

	// Expression is the CEL expression evaluated against the identity's
	// attribute record. Required for every kind except uuid.
	Expression string `yaml:"expression,omitempty" json:"expression,omitempty"`

	// Refresh recomputes the attribute on every pass. When false the
	// attribute is computed only if currently absent from the account.
	Refresh bool `yaml:"refresh,omitempty" json:"refresh,omitempty"`

	// Case, RemoveSpaces and Normalize are the transformation flags,
	// applied in that fixed order after expression evaluation.
	Case         Case `yaml:"case,omitempty" json:"case,omitempty"`
	RemoveSpaces bool `yaml:"removeSpaces,omitempty" json:"removeSpaces,omitempty"`
	Normalize    bool `yaml:"normalize,omitempty" json:"normalize,omitempty"`

	// Digits is the zero-padding width for rendered counter values.
	Digits int `yaml:"digits,omitempty" json:"digits,omitempty"`

	// CounterStart is the initial value of the rule's persistent counter
	// sequence. Zero means the default of 1.
	CounterStart int `yaml:"counterStart,omitempty" json:"counterStart,omitempty"`

	// MaxLength caps the rendered value length. Zero means no cap.
	MaxLength int `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
}

// Start returns the counter start value, defaulting to 1.
func (r *Rule) Start() int {
	if r.CounterStart <= 0 {
		return 1
	}
	return r.CounterStart
}

// EffectiveCase returns the case mode, mapping the empty string to CaseSame.
func (r *Rule) EffectiveCase() Case {
	if r.Case == "" {
		return CaseSame
	}
	return r.Case
}

// Validate checks the rule for configuration errors.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
	}
	if r.Kind != KindUUID && r.Expression == "" {
		return fmt.Errorf("rule %q: expression is required for kind %q", r.Name, r.Kind)
	}
	if !r.Case.IsValid() {
		return fmt.Errorf("rule %q: unknown case %q", r.Name, r.Case)
	}
	if r.Digits < 0 {
		return fmt.Errorf("rule %q: digits must not be negative", r.Name)
	}
	if r.MaxLength < 0 {
		return fmt.Errorf("rule %q: maxLength must not be negative", r.Name)
	}
	return nil
}

// Set is an ordered list of rules. Order is significant: rules are applied
// in configured sequence.
type Set []Rule

// Validate checks every rule and rejects duplicate names.
func (s Set) Validate() error {
	seen := make(map[string]bool, len(s))
	for i := range s {
		r := &s[i]
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Names returns the rule names in configured order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for i := range s {
		names = append(names, s[i].Name)
	}
	return names
}

// Unique returns the rules with kind unique, in configured order.
func (s Set) Unique() []*Rule {
	var out []*Rule
	for i := range s {
		if s[i].Kind == KindUnique {
			out = append(out, &s[i])
		}
	}
	return out
}
