// Package types defines the identity and account records exchanged between
// the attribute-generation engine, the identity directory, and the host
// runtime.
package types
