package engine

import (
	"context"

	genattr "github.com/identitykit/genattr"
	"github.com/identitykit/genattr/rule"
	"github.com/identitykit/genattr/state"
	"github.com/identitykit/genattr/types"
)

// CounterResolver supplies the counter appropriate to a rule's kind: the
// persistent sequence for counter kinds, an ephemeral counter for unique and
// uuid kinds. Returning nil means no counter context is available and
// counter-kind rules are skipped.
type CounterResolver func(r *rule.Rule) func() int

// ValuesResolver supplies the uniqueness value set for a rule. Returning
// nil means no uniqueness context is available and unique-kind rules are
// skipped.
type ValuesResolver func(r *rule.Rule) *state.ValueSet

// Assemble iterates the rule set against one identity and produces a
// finished account record.
//
// The account's attribute map is seeded from existing (the identity's
// current account on the source) when non-nil, otherwise with just the
// identity's id and name. Each rule is skipped unless it is marked refresh
// or its target attribute is currently absent. Computed values are written
// both into the account and back into the identity's attribute record, so
// later rules in the same pass can reference them.
//
// An identity without an attribute record cannot be templated against; that
// is fatal for the whole operation, not just this identity.
func (e *Engine) Assemble(ctx context.Context, rules rule.Set, identity *types.Identity, existing map[string]any, counters CounterResolver, values ValuesResolver) (types.Account, error) {
	attrs := existing
	if attrs == nil {
		attrs = map[string]any{
			"id":   identity.ID,
			"name": identity.Name,
		}
	}

	for i := range rules {
		r := &rules[i]

		counter := counters(r)
		set := values(r)

		if r.Kind == rule.KindCounter && counter == nil {
			e.logger.Info("skipping attribute: no counter context for counter kind", "rule", r.Name, "identity", identity.ID)
			continue
		}
		if r.Kind == rule.KindUnique && set == nil {
			e.logger.Info("skipping attribute: no uniqueness context for unique kind", "rule", r.Name, "identity", identity.ID)
			continue
		}

		if !r.Refresh && attrs[r.Name] != nil {
			continue
		}

		if !identity.HasAttributes() {
			e.logger.Error("identity has no attributes", "identity", identity.ID)
			err := genattr.NewExecutionError("Engine.Assemble", genattr.ErrMissingIdentityAttributes).
				WithContext(map[string]any{"identity": identity.ID, "rule": r.Name})
			return types.Account{}, err
		}

		e.logger.Debug("building attribute", "rule", r.Name, "identity", identity.ID)
		value, ok := e.ComputeValue(ctx, r, identity.Attributes, counter, set)
		if !ok {
			// No value produced; the attribute stays unset and the run
			// continues.
			continue
		}

		attrs[r.Name] = value
		identity.Attributes[r.Name] = value
	}

	return types.NewAccount(attrs), nil
}
