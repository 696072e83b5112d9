package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/repository"
	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/store"
	"github.com/simmer-app/simmer-backend/internal/types"
)

// SetupTestRouter creates a router backed by a store on an in-memory
// repository, with deterministic ids and clock
func SetupTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	return setupRouterWithImageService(t, nil)
}

func setupRouterWithImageService(t *testing.T, imageService service.IImageService) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)

	broker := repository.NewMemoryBroker()
	repo := broker.Collection("api-test")
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close repository: %v", err)
		}
	})

	ids := 0
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	st := store.New(repo,
		store.WithIDFunc(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
		store.WithNowFunc(func() time.Time {
			ticks++
			return start.Add(time.Duration(ticks) * time.Second)
		}),
	)
	require.NoError(t, st.Start(context.Background()))

	router := gin.New()
	SetupAPI(router, st, imageService, nil)

	return router, st
}

// PerformRequest is a helper function to make HTTP requests in tests
func PerformRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	router.ServeHTTP(w, req)
	return w
}

// CreateTestRecipe posts a valid recipe and returns the created resource
func CreateTestRecipe(t *testing.T, router *gin.Engine, title string) types.Recipe {
	input := types.RecipeInput{
		Title:       title,
		Description: "A test recipe",
		Ingredients: []types.IngredientInput{
			{Name: "Flour", Amount: 2, Unit: "cups"},
		},
		Instructions: []types.InstructionInput{
			{Text: "Mix everything"},
		},
		PrepTime:   10,
		CookTime:   20,
		Servings:   4,
		Category:   []string{"Dinner"},
		Cuisine:    "American",
		Difficulty: types.DifficultyEasy,
		Author:     "casey",
	}

	w := PerformRequest(router, http.MethodPost, "/api/v1/recipes", input)
	require.Equal(t, http.StatusCreated, w.Code)

	var recipe types.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	return recipe
}
