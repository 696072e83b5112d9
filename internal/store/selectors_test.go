package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-app/simmer-backend/internal/types"
)

func twoRecipeState() State {
	return State{
		Recipes: []types.Recipe{
			{ID: "r-1", Title: "Apple Pie", Description: "Classic dessert", Category: []string{"Dessert"}},
			{ID: "r-2", Title: "Beef Stew", Description: "Hearty dinner", Category: []string{"Dinner"}},
		},
	}
}

func titles(recipes []types.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func TestFilteredRecipesNoFilterReturnsAllInOrder(t *testing.T) {
	state := twoRecipeState()

	got := FilteredRecipes(state)

	assert.Equal(t, []string{"Apple Pie", "Beef Stew"}, titles(got))
}

func TestFilteredRecipesSearchTerm(t *testing.T) {
	state := twoRecipeState()
	state.SearchTerm = "pie"

	got := FilteredRecipes(state)

	assert.Equal(t, []string{"Apple Pie"}, titles(got))
}

func TestFilteredRecipesSearchIsCaseInsensitive(t *testing.T) {
	state := twoRecipeState()
	state.SearchTerm = "PIE"

	got := FilteredRecipes(state)

	assert.Equal(t, []string{"Apple Pie"}, titles(got))
}

func TestFilteredRecipesSearchMatchesDescription(t *testing.T) {
	state := twoRecipeState()
	state.SearchTerm = "hearty"

	got := FilteredRecipes(state)

	assert.Equal(t, []string{"Beef Stew"}, titles(got))
}

func TestFilteredRecipesCategory(t *testing.T) {
	state := twoRecipeState()
	state.FilterCategory = "Dinner"

	got := FilteredRecipes(state)

	assert.Equal(t, []string{"Beef Stew"}, titles(got))
}

func TestFilteredRecipesFiltersAreConjunctive(t *testing.T) {
	state := twoRecipeState()
	state.SearchTerm = "pie"
	state.FilterCategory = "Dinner"

	got := FilteredRecipes(state)

	assert.Empty(t, got)
}

func TestFilteredRecipesCategoryMustMatchExactly(t *testing.T) {
	state := twoRecipeState()
	state.FilterCategory = "dinner"

	got := FilteredRecipes(state)

	assert.Empty(t, got, "category membership is verbatim, not case-folded")
}

func TestSelectedRecipe(t *testing.T) {
	state := twoRecipeState()

	_, ok := SelectedRecipe(state)
	assert.False(t, ok, "no selection")

	state.SelectedRecipeID = "r-2"
	got, ok := SelectedRecipe(state)
	require.True(t, ok)
	assert.Equal(t, "Beef Stew", got.Title)

	state.SelectedRecipeID = "gone"
	_, ok = SelectedRecipe(state)
	assert.False(t, ok, "stale selection")
}
