// Package template evaluates attribute rule expressions against a record of
// named values.
//
// Expressions are CEL (Common Expression Language) string expressions.
// Every identity attribute referenced by the expression is available as a
// variable, alongside the transient "counter" variable maintained by the
// engine and a "now" timestamp. CEL's arithmetic and the strings extension
// are available as helper namespaces.
//
// Evaluation is side-effect-free apart from logging: a parse or render
// failure produces no value and is reported to the caller as absent.
package template
