package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/syncdoc"
	"github.com/simmer-app/simmer-backend/internal/types"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	storage := openTestStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(storage, logger, time.Second)
	require.NoError(t, h.Boot(context.Background()))

	server := httptest.NewServer(h.Handler())
	t.Cleanup(server.Close)
	return h, server
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func recipeFixture(id, title string) types.Recipe {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return types.Recipe{
		ID:           id,
		Title:        title,
		Description:  "hub test recipe",
		Ingredients:  []types.Ingredient{{ID: id + "-i1", Name: "Flour", Amount: 2, Unit: "cups"}},
		Instructions: []types.Instruction{{ID: id + "-s1", StepNumber: 1, Text: "Mix"}},
		Servings:     4,
		Category:     []string{"Dinner"},
		Difficulty:   types.DifficultyEasy,
		DateCreated:  created,
		DateModified: created,
	}
}

func seedCollection(t *testing.T, h *Hub, id string, recipes ...types.Recipe) {
	t.Helper()

	d := h.getOrCreate(id)
	_, err := syncdoc.Apply(d.doc, recipes)
	require.NoError(t, err)
}

func getSnapshot(t *testing.T, server *httptest.Server, id string) (int, []types.Recipe) {
	t.Helper()

	resp, err := http.Get(server.URL + "/collections/" + id + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	var snapshot struct {
		ID      string         `json:"id"`
		Recipes []types.Recipe `json:"recipes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	return resp.StatusCode, snapshot.Recipes
}

func TestHealthz(t *testing.T) {
	_, server := newTestHub(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestLatestServesDocument(t *testing.T) {
	h, server := newTestHub(t)
	seedCollection(t, h, "household", recipeFixture("r-1", "Apple Pie"))

	resp, err := http.Get(server.URL + "/collections/household/latest")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := automerge.Load(body)
	require.NoError(t, err)
	recipes, err := syncdoc.Decode(doc)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Apple Pie", recipes[0].Title)
}

func TestLatestUnknownCollection(t *testing.T) {
	_, server := newTestHub(t)

	resp, err := http.Get(server.URL + "/collections/nowhere/latest")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"collection not found"}`, string(body))
}

func TestSnapshotAndListCollections(t *testing.T) {
	h, server := newTestHub(t)
	seedCollection(t, h, "household", recipeFixture("r-1", "Apple Pie"), recipeFixture("r-2", "Beef Stew"))
	seedCollection(t, h, "test-kitchen", recipeFixture("r-3", "Gazpacho"))

	status, recipes := getSnapshot(t, server, "household")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Apple Pie", recipes[0].Title)

	status, _ = getSnapshot(t, server, "nowhere")
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := http.Get(server.URL + "/collections")
	require.NoError(t, err)
	defer resp.Body.Close()

	var listing struct {
		Collections []collectionInfo `json:"collections"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Collections, 2)
	assert.Equal(t, "household", listing.Collections[0].ID)
	assert.Equal(t, 2, listing.Collections[0].Recipes)
	assert.NotEmpty(t, listing.Collections[0].Heads)
	assert.Equal(t, "test-kitchen", listing.Collections[1].ID)
	assert.Equal(t, 1, listing.Collections[1].Recipes)
}

func TestSyncSessionPushesChanges(t *testing.T) {
	_, server := newTestHub(t)

	clientDoc := automerge.New()
	_, err := syncdoc.Apply(clientDoc, []types.Recipe{recipeFixture("r-1", "Apple Pie")})
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/collections/household/sync"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- syncdoc.Run(ctx, conn, automerge.NewSyncState(clientDoc), syncdoc.RunOptions{
			FlushInterval: 10 * time.Millisecond,
		})
	}()

	assert.Eventually(t, func() bool {
		status, recipes := getSnapshot(t, server, "household")
		return status == http.StatusOK && len(recipes) == 1 && recipes[0].Title == "Apple Pie"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-sessionDone
}

func TestSyncSessionDeliversExistingState(t *testing.T) {
	h, server := newTestHub(t)
	seedCollection(t, h, "household", recipeFixture("r-1", "Apple Pie"))

	clientDoc := automerge.New()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/collections/household/sync"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- syncdoc.Run(ctx, conn, automerge.NewSyncState(clientDoc), syncdoc.RunOptions{
			FlushInterval: 10 * time.Millisecond,
		})
	}()

	assert.Eventually(t, func() bool {
		recipes, err := syncdoc.Decode(clientDoc)
		return err == nil && len(recipes) == 1 && recipes[0].Title == "Apple Pie"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-sessionDone
}

func TestCheckpointPersistsChangedDocuments(t *testing.T) {
	h, _ := newTestHub(t)
	ctx := context.Background()

	seedCollection(t, h, "household", recipeFixture("r-1", "Apple Pie"))
	h.Checkpoint(ctx)

	records, err := h.storage.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "household", records[0].ID)

	doc, err := automerge.Load(records[0].Content)
	require.NoError(t, err)
	recipes, err := syncdoc.Decode(doc)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Apple Pie", recipes[0].Title)

	// A second pass with no changes leaves the stored record untouched.
	firstWrite := records[0].UpdatedAt
	h.Checkpoint(ctx)
	records, err = h.storage.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].UpdatedAt.Equal(firstWrite))
}

func TestBootRestoresCollections(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()

	doc := automerge.New()
	_, err := syncdoc.Apply(doc, []types.Recipe{recipeFixture("r-1", "Apple Pie")})
	require.NoError(t, err)
	require.NoError(t, storage.Upsert(ctx, "household", doc.Save()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(storage, logger, time.Second)
	require.NoError(t, h.Boot(ctx))

	server := httptest.NewServer(h.Handler())
	defer server.Close()

	status, recipes := getSnapshot(t, server, "household")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Apple Pie", recipes[0].Title)
}

func TestDeleteCollection(t *testing.T) {
	h, server := newTestHub(t)
	ctx := context.Background()

	seedCollection(t, h, "household", recipeFixture("r-1", "Apple Pie"))
	h.Checkpoint(ctx)

	request, err := http.NewRequest(http.MethodDelete, server.URL+"/collections/household", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	latest, err := http.Get(server.URL + "/collections/household/latest")
	require.NoError(t, err)
	defer latest.Body.Close()
	assert.Equal(t, http.StatusNotFound, latest.StatusCode)

	records, err := h.storage.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMetricsEndpoint(t *testing.T) {
	_, server := newTestHub(t)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "syncd_sessions_active")
}
