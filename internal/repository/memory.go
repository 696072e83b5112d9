package repository

import (
	"context"
	"sync"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// MemoryBroker keeps collections in process memory and relays snapshots
// between the repositories opened on it. It backs single-process setups
// and tests; nothing survives a restart.
type MemoryBroker struct {
	mu          sync.Mutex
	collections map[string][]types.Recipe
	subs        map[string]map[int]*memorySub
	nextSub     int
}

type memorySub struct {
	ctx   context.Context
	owner *MemoryRepository
	fn    func([]types.Recipe)
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		collections: make(map[string][]types.Recipe),
		subs:        make(map[string]map[int]*memorySub),
	}
}

// Collection returns a repository handle bound to one collection. Handles
// opened on the same broker and collection see each other's saves.
func (b *MemoryBroker) Collection(id string) *MemoryRepository {
	return &MemoryRepository{broker: b, collection: id}
}

// MemoryRepository is one replica's handle onto a broker collection.
type MemoryRepository struct {
	broker     *MemoryBroker
	collection string

	mu     sync.Mutex
	subIDs []int
}

// Load returns a copy of the collection.
func (r *MemoryRepository) Load(ctx context.Context) ([]types.Recipe, error) {
	b := r.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	recipes := types.CloneRecipes(b.collections[r.collection])
	if recipes == nil {
		recipes = []types.Recipe{}
	}
	return recipes, nil
}

// Save replaces the collection and delivers the snapshot to every other
// handle subscribed to it. Delivery is synchronous.
func (r *MemoryRepository) Save(ctx context.Context, recipes []types.Recipe) error {
	b := r.broker
	b.mu.Lock()
	b.collections[r.collection] = types.CloneRecipes(recipes)
	var targets []*memorySub
	for id, sub := range b.subs[r.collection] {
		if sub.ctx.Err() != nil {
			delete(b.subs[r.collection], id)
			continue
		}
		if sub.owner != r {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.fn(types.CloneRecipes(recipes))
	}
	return nil
}

// Subscribe registers fn for snapshots written through other handles of
// the same collection. The subscription ends when ctx is cancelled or the
// handle is closed.
func (r *MemoryRepository) Subscribe(ctx context.Context, fn func([]types.Recipe)) error {
	b := r.broker
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	if b.subs[r.collection] == nil {
		b.subs[r.collection] = make(map[int]*memorySub)
	}
	b.subs[r.collection][id] = &memorySub{ctx: ctx, owner: r, fn: fn}
	b.mu.Unlock()

	r.mu.Lock()
	r.subIDs = append(r.subIDs, id)
	r.mu.Unlock()
	return nil
}

// Close drops this handle's subscriptions.
func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	ids := r.subIDs
	r.subIDs = nil
	r.mu.Unlock()

	b := r.broker
	b.mu.Lock()
	for _, id := range ids {
		delete(b.subs[r.collection], id)
	}
	b.mu.Unlock()
	return nil
}
