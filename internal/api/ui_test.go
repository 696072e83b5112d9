package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/store"
	"github.com/simmer-app/simmer-backend/internal/types"
)

func getState(t *testing.T, router http.Handler) store.State {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var state store.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestGetState(t *testing.T) {
	router, _ := SetupTestRouter(t)

	state := getState(t, router)
	assert.Empty(t, state.Recipes)
	assert.Empty(t, state.SelectedRecipeID)
	assert.False(t, state.IsLoading)
}

func TestSelectionEndpoints(t *testing.T) {
	router, _ := SetupTestRouter(t)
	created := CreateTestRecipe(t, router, "Apple Pie")

	// Creating selects the new recipe; clearing drops it
	w := PerformRequest(router, http.MethodDelete, "/api/v1/ui/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, getState(t, router).SelectedRecipeID)

	w = PerformRequest(router, http.MethodPut, "/api/v1/ui/selection", selectionRequest{RecipeID: created.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, created.ID, getState(t, router).SelectedRecipeID)

	// Selecting an unknown id clears the selection instead of dangling
	w = PerformRequest(router, http.MethodPut, "/api/v1/ui/selection", selectionRequest{RecipeID: "no-such-id"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, getState(t, router).SelectedRecipeID)
}

func TestEditingEndpoints(t *testing.T) {
	router, _ := SetupTestRouter(t)
	created := CreateTestRecipe(t, router, "Apple Pie")

	w := PerformRequest(router, http.MethodPost, "/api/v1/ui/editing/start", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, getState(t, router).IsEditing)

	w = PerformRequest(router, http.MethodPost, "/api/v1/ui/editing/finish", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, getState(t, router).IsEditing)

	// Changing the selection exits edit mode
	PerformRequest(router, http.MethodPost, "/api/v1/ui/editing/start", nil)
	PerformRequest(router, http.MethodPut, "/api/v1/ui/selection", selectionRequest{RecipeID: created.ID})
	assert.False(t, getState(t, router).IsEditing)
}

func TestCreatingEndpoints(t *testing.T) {
	router, _ := SetupTestRouter(t)
	CreateTestRecipe(t, router, "Apple Pie")
	require.NotEmpty(t, getState(t, router).SelectedRecipeID)

	w := PerformRequest(router, http.MethodPost, "/api/v1/ui/creating/start", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	state := getState(t, router)
	assert.True(t, state.IsCreating)
	assert.Empty(t, state.SelectedRecipeID)

	w = PerformRequest(router, http.MethodPost, "/api/v1/ui/creating/cancel", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, getState(t, router).IsCreating)
}

func TestSearchAndFilterEndpoints(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPut, "/api/v1/ui/search", searchRequest{Term: "pie"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(router, http.MethodPut, "/api/v1/ui/filter", filterRequest{Category: "Dessert"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	state := getState(t, router)
	assert.Equal(t, "pie", state.SearchTerm)
	assert.Equal(t, "Dessert", state.FilterCategory)
}

func TestStreamState(t *testing.T) {
	router, st := SetupTestRouter(t)

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// The feed opens with the current snapshot
	var snapshot store.State
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Empty(t, snapshot.Recipes)

	// Every transition pushes a fresh snapshot
	created := st.CreateRecipe(types.RecipeInput{Title: "Apple Pie"})

	require.NoError(t, conn.ReadJSON(&snapshot))
	require.Len(t, snapshot.Recipes, 1)
	assert.Equal(t, created.ID, snapshot.Recipes[0].ID)
	assert.Equal(t, created.ID, snapshot.SelectedRecipeID)
}
