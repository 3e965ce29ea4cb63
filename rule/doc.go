// Package rule defines the attribute rule model: one rule per generated
// account attribute, tagged with a generation kind and a set of
// transformation flags.
//
// Rules are applied in configured order, and each rule may read values
// (including the transient counter) written into the identity's attribute
// record by earlier rules in the same pass.
package rule
