// Package repository defines the persistence and broadcast contract the
// recipe store is built on. A repository keeps one named collection: the
// store writes whole-collection snapshots and receives whole-collection
// snapshots back when another replica writes. Merge semantics, transport
// and storage format are the repository's business, never the store's.
package repository

import (
	"context"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// Repository persists a recipe collection and propagates changes between
// replicas that share the same collection identifier.
type Repository interface {
	// Load returns the current contents of the collection. A collection
	// that has never been written loads as an empty slice, not an error.
	Load(ctx context.Context) ([]types.Recipe, error)

	// Save replaces the collection with the given snapshot and propagates
	// it to other replicas.
	Save(ctx context.Context, recipes []types.Recipe) error

	// Subscribe registers fn to be called with a full snapshot whenever
	// another replica changes the collection. fn must not be called for
	// this replica's own saves. Delivery stops when ctx is cancelled.
	Subscribe(ctx context.Context, fn func([]types.Recipe)) error

	// Close releases any connections held by the repository.
	Close() error
}
