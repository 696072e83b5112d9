// Package syncdoc defines the automerge document layout shared by every
// replica of a recipe collection, plus the websocket loop that keeps two
// documents converged. The document holds a single map under CollectionKey
// whose keys are recipe ids and whose values are the JSON encoding of one
// recipe. Concurrent edits to different recipes merge cleanly; concurrent
// edits to the same recipe resolve to one writer's whole recipe.
package syncdoc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/automerge/automerge-go"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// CollectionKey is the document root key the recipe map lives under.
const CollectionKey = "recipes"

// Decode reads the full recipe collection out of a document. Recipes come
// back ordered by creation time, with ids breaking ties, so every replica
// derives the same collection order. A document without a collection map
// decodes as empty.
func Decode(doc *automerge.Doc) ([]types.Recipe, error) {
	root, err := doc.Path(CollectionKey).Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection root: %w", err)
	}
	recipes := []types.Recipe{}
	if root.Kind() != automerge.KindMap {
		return recipes, nil
	}
	m := root.Map()
	keys, err := m.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ids: %w", err)
	}
	for _, key := range keys {
		raw, err := automerge.As[string](m.Get(key))
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe %q: %w", key, err)
		}
		var r types.Recipe
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to decode recipe %q: %w", key, err)
		}
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool {
		if !recipes[i].DateCreated.Equal(recipes[j].DateCreated) {
			return recipes[i].DateCreated.Before(recipes[j].DateCreated)
		}
		return recipes[i].ID < recipes[j].ID
	})
	return recipes, nil
}

// Apply updates the document so it holds exactly the given collection.
// Entries that already match are left untouched, keeping no-op saves from
// generating changes. The return reports whether the document changed.
func Apply(doc *automerge.Doc, recipes []types.Recipe) (bool, error) {
	root, err := doc.Path(CollectionKey).Get()
	if err != nil {
		return false, fmt.Errorf("failed to read collection root: %w", err)
	}
	current := map[string]string{}
	var m *automerge.Map
	if root.Kind() == automerge.KindMap {
		m = root.Map()
		keys, err := m.Keys()
		if err != nil {
			return false, fmt.Errorf("failed to list recipe ids: %w", err)
		}
		for _, key := range keys {
			raw, err := automerge.As[string](m.Get(key))
			if err != nil {
				return false, fmt.Errorf("failed to read recipe %q: %w", key, err)
			}
			current[key] = raw
		}
	}

	changed := false
	for i := range recipes {
		raw, err := json.Marshal(recipes[i])
		if err != nil {
			return changed, fmt.Errorf("failed to encode recipe %q: %w", recipes[i].ID, err)
		}
		id := recipes[i].ID
		if got, ok := current[id]; ok && got == string(raw) {
			delete(current, id)
			continue
		}
		if err := doc.Path(CollectionKey, id).Set(string(raw)); err != nil {
			return changed, fmt.Errorf("failed to write recipe %q: %w", id, err)
		}
		delete(current, id)
		changed = true
	}
	// Anything left in current is gone from the snapshot.
	for id := range current {
		if err := m.Delete(id); err != nil {
			return changed, fmt.Errorf("failed to delete recipe %q: %w", id, err)
		}
		changed = true
	}
	return changed, nil
}

// HeadsKey returns a stable fingerprint of the document's current heads,
// usable to detect whether the document changed between two calls.
func HeadsKey(doc *automerge.Doc) string {
	heads := doc.Heads()
	parts := make([]string, len(heads))
	for i, h := range heads {
		parts[i] = h.String()
	}
	return strings.Join(parts, ",")
}
