package store

import (
	"strings"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// SelectedRecipe returns the recipe the selection points at. The second
// return is false when nothing is selected.
func SelectedRecipe(s State) (types.Recipe, bool) {
	if s.SelectedRecipeID == "" {
		return types.Recipe{}, false
	}
	return s.Recipe(s.SelectedRecipeID)
}

// FilteredRecipes returns the recipes matching both the search term and the
// category filter, in collection order. A non-empty search term matches
// case-insensitively against title or description; a non-empty filter
// category must appear verbatim in the recipe's category list. An empty
// term or category disables that half of the filter.
func FilteredRecipes(s State) []types.Recipe {
	term := strings.ToLower(s.SearchTerm)
	out := make([]types.Recipe, 0, len(s.Recipes))
	for i := range s.Recipes {
		r := &s.Recipes[i]
		if term != "" && !matchesTerm(r, term) {
			continue
		}
		if s.FilterCategory != "" && !hasCategory(r, s.FilterCategory) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

func matchesTerm(r *types.Recipe, term string) bool {
	return strings.Contains(strings.ToLower(r.Title), term) ||
		strings.Contains(strings.ToLower(r.Description), term)
}

func hasCategory(r *types.Recipe, category string) bool {
	for _, c := range r.Category {
		if c == category {
			return true
		}
	}
	return false
}
