// Package engine is the attribute-generation core. It composes the template
// evaluator, the string transformer, the counter state store, and the
// uniqueness tracker into three layers:
//
//   - Engine.ComputeValue derives one attribute value for one identity
//     according to a rule, including the collision-retry loop for unique and
//     uuid kinds.
//   - Engine.Assemble iterates a rule set over one identity and produces a
//     finished account record.
//   - Processor.Run iterates an identity population: it seeds uniqueness
//     sets from existing accounts, applies refresh resets, assembles each
//     identity in order, streams the accounts out, and snapshots counter
//     state for persistence.
//
// Processing is single-threaded and order-dependent by design: unique
// values are reserved in population-iteration order, so a run is
// reproducible for a fixed iteration order and starting state.
package engine
