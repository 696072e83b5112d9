package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// unreachableHub points at a port nothing listens on, so bootstrap falls
// back to an empty document without waiting.
const unreachableHub = "http://127.0.0.1:1"

func TestAutomergeRequiresHubAndCollection(t *testing.T) {
	_, err := NewAutomerge(context.Background(), AutomergeConfig{CollectionID: "kitchen"})
	assert.Error(t, err)

	_, err = NewAutomerge(context.Background(), AutomergeConfig{HubURL: unreachableHub})
	assert.Error(t, err)
}

func TestAutomergeStartsEmptyWhenHubUnreachable(t *testing.T) {
	repo, err := NewAutomerge(context.Background(), AutomergeConfig{
		HubURL:       unreachableHub,
		CollectionID: "kitchen",
	})
	require.NoError(t, err)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	require.NoError(t, repo.Close())
}

func TestAutomergeSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitchen.automerge")
	ctx := context.Background()

	first, err := NewAutomerge(ctx, AutomergeConfig{
		HubURL:       unreachableHub,
		CollectionID: "kitchen",
		DocPath:      path,
	})
	require.NoError(t, err)
	recipe := types.Recipe{
		ID:           "r-1",
		Title:        "Apple Pie",
		DateCreated:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DateModified: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, first.Save(ctx, []types.Recipe{recipe}))
	require.NoError(t, first.Close())

	second, err := NewAutomerge(ctx, AutomergeConfig{
		HubURL:       unreachableHub,
		CollectionID: "kitchen",
		DocPath:      path,
	})
	require.NoError(t, err)
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "r-1", loaded[0].ID)
	assert.Equal(t, "Apple Pie", loaded[0].Title)
	require.NoError(t, second.Close())
}

func TestAutomergeSaveUnchangedSnapshotIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo, err := NewAutomerge(ctx, AutomergeConfig{
		HubURL:       unreachableHub,
		CollectionID: "kitchen",
	})
	require.NoError(t, err)

	recipes := []types.Recipe{{ID: "r-1", Title: "Apple Pie"}}
	require.NoError(t, repo.Save(ctx, recipes))
	headsAfterFirst := repo.lastHeads
	require.NoError(t, repo.Save(ctx, recipes))

	assert.Equal(t, headsAfterFirst, repo.lastHeads)
	require.NoError(t, repo.Close())
}

func TestAutomergeSyncURL(t *testing.T) {
	r := &AutomergeRepository{cfg: AutomergeConfig{HubURL: "http://hub.local:8090", CollectionID: "kitchen"}}
	u, err := r.syncURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://hub.local:8090/collections/kitchen/sync", u)

	r.cfg.HubURL = "https://sync.example.com/base"
	u, err = r.syncURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://sync.example.com/base/collections/kitchen/sync", u)

	r.cfg.HubURL = "ftp://nope"
	_, err = r.syncURL()
	assert.Error(t, err)
}
