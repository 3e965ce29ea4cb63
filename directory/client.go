// Package directory is the identity-directory collaborator boundary. The
// core consumes a flat sequence of identities matching a query and the
// existing accounts of a source; authentication and pagination live behind
// the Client interface and never leak into the engine.
package directory

import (
	"context"

	"github.com/identitykit/genattr/types"
)

// Index selects the directory search index.
type Index string

const (
	// IndexIdentities searches the identity index.
	IndexIdentities Index = "identities"
)

// Account is an existing account on a source, as listed by the directory.
type Account struct {
	// IdentityID is the id of the identity the account belongs to.
	IdentityID string `json:"identityId"`

	// Attributes is the account's current attribute map.
	Attributes map[string]any `json:"attributes"`
}

// Client is the identity-directory client the connector depends on.
// Implementations paginate internally; callers always see complete results.
type Client interface {
	// TestConnection verifies the directory is reachable with the
	// configured credentials.
	TestConnection(ctx context.Context) error

	// Search returns the identities matching the query.
	Search(ctx context.Context, query string, index Index, includeNested bool) ([]*types.Identity, error)

	// ListAccountsBySource returns every existing account on the source.
	ListAccountsBySource(ctx context.Context, sourceID string) ([]Account, error)

	// GetIdentity returns the identity with the given id.
	GetIdentity(ctx context.Context, id string) (*types.Identity, error)

	// GetIdentityByName returns the identity with the given exact name.
	GetIdentityByName(ctx context.Context, name string) (*types.Identity, error)
}
