package provider

import "context"

// Registry is the durable store of providers consumed by the config
// resolver. Implementations own persistence; callers treat records as
// read-only snapshots.
type Registry interface {
	// DefaultID returns the id of the default provider, or "" when no
	// default is configured.
	DefaultID(ctx context.Context) (string, error)

	// GetByID returns the provider with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Provider, error)

	// List returns all registered providers.
	List(ctx context.Context) ([]*Provider, error)
}
