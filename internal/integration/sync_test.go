package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/hub"
	"github.com/simmer-app/simmer-backend/internal/repository"
	"github.com/simmer-app/simmer-backend/internal/store"
	"github.com/simmer-app/simmer-backend/internal/types"
)

const convergeTimeout = 10 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()

	storage, err := hub.OpenStorage(hub.StorageConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "hub.sqlite3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	h := hub.New(storage, discardLogger(), time.Second)
	require.NoError(t, h.Boot(context.Background()))

	server := httptest.NewServer(h.Handler())
	t.Cleanup(server.Close)
	return h, server
}

func startReplica(t *testing.T, ctx context.Context, hubURL, collection string) *store.Store {
	t.Helper()

	repo, err := repository.Open(ctx, repository.Config{
		Driver:        repository.DriverAutomerge,
		CollectionID:  collection,
		HubURL:        hubURL,
		FlushInterval: 10 * time.Millisecond,
		ReconnectWait: 50 * time.Millisecond,
		Logger:        discardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	st := store.New(repo)
	require.NoError(t, st.Start(ctx))
	return st
}

func pieInput(title string) types.RecipeInput {
	return types.RecipeInput{
		Title:        title,
		Description:  "integration fixture",
		Ingredients:  []types.IngredientInput{{Name: "Apples", Amount: 6, Unit: "whole"}},
		Instructions: []types.InstructionInput{{Text: "Bake until golden"}},
		PrepTime:     30,
		CookTime:     45,
		Servings:     8,
		Category:     []string{"Dessert"},
		Difficulty:   types.DifficultyMedium,
		Author:       "casey",
	}
}

func TestReplicasConvergeThroughHub(t *testing.T) {
	_, server := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := startReplica(t, ctx, server.URL, "household")
	second := startReplica(t, ctx, server.URL, "household")

	created := first.CreateRecipe(pieInput("Apple Pie"))

	assert.Eventually(t, func() bool {
		recipe, ok := second.Recipe(created.ID)
		return ok && recipe.Title == "Apple Pie"
	}, convergeTimeout, 25*time.Millisecond)

	// An edit on the second replica flows back to the first.
	title := "Dutch Apple Pie"
	second.UpdateRecipe(created.ID, types.RecipePatch{Title: &title})

	assert.Eventually(t, func() bool {
		recipe, ok := first.Recipe(created.ID)
		return ok && recipe.Title == "Dutch Apple Pie"
	}, convergeTimeout, 25*time.Millisecond)
}

func hubHasRecipes(server *httptest.Server, collection string, want int) bool {
	resp, err := http.Get(server.URL + "/collections/" + collection + "/snapshot")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var snapshot struct {
		Recipes []types.Recipe `json:"recipes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return false
	}
	return len(snapshot.Recipes) == want
}

func TestLateReplicaBootstrapsFromHub(t *testing.T) {
	_, server := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := startReplica(t, ctx, server.URL, "household")
	created := first.CreateRecipe(pieInput("Beef Stew"))

	// Wait for the first replica's push to land on the hub.
	require.Eventually(t, func() bool {
		return hubHasRecipes(server, "household", 1)
	}, convergeTimeout, 25*time.Millisecond)

	// A replica started now bootstraps the full document before its store
	// loads, so the recipe is visible without waiting for a sync message.
	late := startReplica(t, ctx, server.URL, "household")
	recipe, ok := late.Recipe(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Beef Stew", recipe.Title)
}

func TestDisjointEditsMergeAcrossReplicas(t *testing.T) {
	_, server := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := startReplica(t, ctx, server.URL, "household")
	second := startReplica(t, ctx, server.URL, "household")

	fromFirst := first.CreateRecipe(pieInput("Apple Pie"))
	fromSecond := second.CreateRecipe(pieInput("Gazpacho"))

	bothPresent := func(st *store.Store) bool {
		_, okA := st.Recipe(fromFirst.ID)
		_, okB := st.Recipe(fromSecond.ID)
		return okA && okB
	}

	assert.Eventually(t, func() bool {
		return bothPresent(first) && bothPresent(second)
	}, convergeTimeout, 25*time.Millisecond)
}

func TestHubPersistsAcrossRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "hub.sqlite3")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := hub.OpenStorage(hub.StorageConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	h := hub.New(storage, discardLogger(), time.Second)
	require.NoError(t, h.Boot(ctx))
	server := httptest.NewServer(h.Handler())

	replicaCtx, stopReplica := context.WithCancel(ctx)
	first := startReplica(t, replicaCtx, server.URL, "household")
	created := first.CreateRecipe(pieInput("Apple Pie"))

	// Wait for the hub's copy to carry the recipe, then checkpoint it.
	require.Eventually(t, func() bool {
		h.Checkpoint(ctx)
		records, err := storage.LoadAll(ctx)
		return err == nil && len(records) == 1
	}, convergeTimeout, 50*time.Millisecond)

	stopReplica()
	server.Close()
	require.NoError(t, storage.Close())

	// A fresh hub over the same database serves the checkpointed state.
	storage, err = hub.OpenStorage(hub.StorageConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	restarted := hub.New(storage, discardLogger(), time.Second)
	require.NoError(t, restarted.Boot(ctx))
	server = httptest.NewServer(restarted.Handler())
	t.Cleanup(server.Close)

	late := startReplica(t, ctx, server.URL, "household")
	recipe, ok := late.Recipe(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Apple Pie", recipe.Title)
}
