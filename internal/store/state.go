package store

import "github.com/simmer-app/simmer-backend/internal/types"

// State is one snapshot of everything the views read: the recipe collection
// plus the UI flags of this replica. The collection is shared between
// replicas through the repository; the UI flags never leave the process.
//
// SelectedRecipeID is a weak reference: it always either names a recipe
// present in Recipes or is empty. The store clears it whenever the recipe
// it points at disappears, locally or through a remote update.
type State struct {
	Recipes          []types.Recipe `json:"recipes"`
	SelectedRecipeID string         `json:"selectedRecipeId"`
	IsEditing        bool           `json:"isEditing"`
	IsCreating       bool           `json:"isCreating"`
	SearchTerm       string         `json:"searchTerm"`
	FilterCategory   string         `json:"filterCategory"`
	IsLoading        bool           `json:"isLoading"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Recipes = types.CloneRecipes(s.Recipes)
	return out
}

// Recipe returns a copy of the recipe with the given id.
func (s State) Recipe(id string) (types.Recipe, bool) {
	for i := range s.Recipes {
		if s.Recipes[i].ID == id {
			return s.Recipes[i].Clone(), true
		}
	}
	return types.Recipe{}, false
}

func (s *State) find(id string) *types.Recipe {
	for i := range s.Recipes {
		if s.Recipes[i].ID == id {
			return &s.Recipes[i]
		}
	}
	return nil
}

func (s *State) dropDanglingSelection() {
	if s.SelectedRecipeID == "" {
		return
	}
	if s.find(s.SelectedRecipeID) == nil {
		s.SelectedRecipeID = ""
	}
}
