// Package store implements the single source of truth for the recipe
// collection and the per-replica UI state built on top of it.
package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simmer-app/simmer-backend/internal/repository"
	"github.com/simmer-app/simmer-backend/internal/types"
)

const saveTimeout = 10 * time.Second

// Store owns the recipe collection and the UI flags and is the only writer
// of either. Every mutation is total: unknown identifiers are silently
// absorbed as no-ops and bad input is stored as-is. Validation belongs to
// the boundary in front of the store, not here.
//
// Each transition swaps in a fresh copy of the state, so snapshots handed
// to subscribers are never mutated afterwards. Collection transitions are
// additionally persisted through the repository, which propagates them to
// other replicas; UI flags stay local to this replica.
type Store struct {
	mu    sync.RWMutex
	state State
	repo  repository.Repository

	now   func() time.Time
	newID func() string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithNowFunc replaces the clock used to stamp DateCreated and
// DateModified. The default reads the system clock in UTC.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc replaces the generator used for recipe, ingredient and
// instruction ids. The default generates random UUID strings.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a store backed by the given repository. Call Start before
// sharing the store.
func New(repo repository.Repository, opts ...Option) *Store {
	s := &Store{
		state: State{Recipes: []types.Recipe{}},
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the collection from the repository and begins applying
// remote updates. Remote delivery stops when ctx is cancelled.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	s.state.IsLoading = true
	s.mu.Unlock()
	s.notify()

	recipes, err := s.repo.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.state.IsLoading = false
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("failed to load recipe collection: %w", err)
	}

	s.mu.Lock()
	s.state.Recipes = types.CloneRecipes(recipes)
	if s.state.Recipes == nil {
		s.state.Recipes = []types.Recipe{}
	}
	s.state.IsLoading = false
	s.state.dropDanglingSelection()
	s.mu.Unlock()

	if err := s.repo.Subscribe(ctx, s.applyRemote); err != nil {
		return fmt.Errorf("failed to subscribe to remote updates: %w", err)
	}
	s.notify()
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Recipe returns a copy of the recipe with the given id.
func (s *Store) Recipe(id string) (types.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Recipe(id)
}

// Subscribe registers fn to be called with a snapshot after every state
// transition. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// CreateRecipe appends a recipe built from input, selects it, and leaves
// creating mode. Ids and both timestamps are generated here; input is
// stored as given, without validation. The new recipe is returned.
func (s *Store) CreateRecipe(input types.RecipeInput) types.Recipe {
	var created types.Recipe
	s.apply(true, func(st *State) bool {
		now := s.now()
		recipe := types.Recipe{
			ID:           s.newID(),
			Title:        input.Title,
			Description:  input.Description,
			Ingredients:  make([]types.Ingredient, 0, len(input.Ingredients)),
			Instructions: make([]types.Instruction, 0, len(input.Instructions)),
			PrepTime:     input.PrepTime,
			CookTime:     input.CookTime,
			Servings:     input.Servings,
			Category:     append([]string{}, input.Category...),
			Cuisine:      input.Cuisine,
			Difficulty:   input.Difficulty,
			Nutrition:    input.Nutrition.Clone(),
			ImageURL:     input.ImageURL,
			Author:       input.Author,
			DateCreated:  now,
			DateModified: now,
			Notes:        input.Notes,
		}
		for _, in := range input.Ingredients {
			recipe.Ingredients = append(recipe.Ingredients, types.Ingredient{
				ID:          s.newID(),
				Name:        in.Name,
				Amount:      in.Amount,
				Unit:        in.Unit,
				Preparation: in.Preparation,
			})
		}
		for i, in := range input.Instructions {
			step := in.StepNumber
			if step <= 0 {
				step = i + 1
			}
			recipe.Instructions = append(recipe.Instructions, types.Instruction{
				ID:         s.newID(),
				StepNumber: step,
				Text:       in.Text,
			})
		}
		st.Recipes = append(st.Recipes, recipe)
		st.SelectedRecipeID = recipe.ID
		st.IsCreating = false
		created = recipe.Clone()
		return true
	})
	return created
}

// UpdateRecipe merges the non-nil patch fields into the recipe with the
// given id and refreshes DateModified. Unknown ids are no-ops.
func (s *Store) UpdateRecipe(id string, patch types.RecipePatch) {
	s.apply(true, func(st *State) bool {
		r := st.find(id)
		if r == nil {
			return false
		}
		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.PrepTime != nil {
			r.PrepTime = *patch.PrepTime
		}
		if patch.CookTime != nil {
			r.CookTime = *patch.CookTime
		}
		if patch.Servings != nil {
			r.Servings = *patch.Servings
		}
		if patch.Category != nil {
			r.Category = append([]string{}, (*patch.Category)...)
		}
		if patch.Cuisine != nil {
			r.Cuisine = *patch.Cuisine
		}
		if patch.Difficulty != nil {
			r.Difficulty = *patch.Difficulty
		}
		if patch.Nutrition != nil {
			r.Nutrition = patch.Nutrition.Clone()
		}
		if patch.ImageURL != nil {
			r.ImageURL = *patch.ImageURL
		}
		if patch.Author != nil {
			r.Author = *patch.Author
		}
		if patch.Notes != nil {
			r.Notes = *patch.Notes
		}
		r.DateModified = s.now()
		return true
	})
}

// DeleteRecipe removes the recipe with the given id. If that recipe was
// selected the selection is cleared. Unknown ids are no-ops.
func (s *Store) DeleteRecipe(id string) {
	s.apply(true, func(st *State) bool {
		idx := -1
		for i := range st.Recipes {
			if st.Recipes[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		st.Recipes = append(st.Recipes[:idx], st.Recipes[idx+1:]...)
		if st.SelectedRecipeID == id {
			st.SelectedRecipeID = ""
		}
		return true
	})
}

// ToggleFavorite flips the favorite flag of the recipe with the given id
// and refreshes DateModified. Unknown ids are no-ops.
func (s *Store) ToggleFavorite(id string) {
	s.apply(true, func(st *State) bool {
		r := st.find(id)
		if r == nil {
			return false
		}
		r.IsFavorite = !r.IsFavorite
		r.DateModified = s.now()
		return true
	})
}

// AddIngredient appends an ingredient with a fresh id to the recipe with
// the given id and refreshes the recipe's DateModified. Unknown recipe ids
// are no-ops.
func (s *Store) AddIngredient(recipeID string, input types.IngredientInput) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		r.Ingredients = append(r.Ingredients, types.Ingredient{
			ID:          s.newID(),
			Name:        input.Name,
			Amount:      input.Amount,
			Unit:        input.Unit,
			Preparation: input.Preparation,
		})
		r.DateModified = s.now()
		return true
	})
}

// UpdateIngredient merges the non-nil patch fields into one ingredient of
// the given recipe and refreshes the recipe's DateModified. Unknown recipe
// or ingredient ids are no-ops.
func (s *Store) UpdateIngredient(recipeID, ingredientID string, patch types.IngredientPatch) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		for i := range r.Ingredients {
			if r.Ingredients[i].ID != ingredientID {
				continue
			}
			in := &r.Ingredients[i]
			if patch.Name != nil {
				in.Name = *patch.Name
			}
			if patch.Amount != nil {
				in.Amount = *patch.Amount
			}
			if patch.Unit != nil {
				in.Unit = *patch.Unit
			}
			if patch.Preparation != nil {
				in.Preparation = *patch.Preparation
			}
			r.DateModified = s.now()
			return true
		}
		return false
	})
}

// RemoveIngredient deletes one ingredient of the given recipe and refreshes
// the recipe's DateModified. Unknown recipe or ingredient ids are no-ops.
func (s *Store) RemoveIngredient(recipeID, ingredientID string) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		for i := range r.Ingredients {
			if r.Ingredients[i].ID == ingredientID {
				r.Ingredients = append(r.Ingredients[:i], r.Ingredients[i+1:]...)
				r.DateModified = s.now()
				return true
			}
		}
		return false
	})
}

// AddInstruction appends an instruction with a fresh id to the recipe with
// the given id and refreshes the recipe's DateModified. A zero StepNumber
// is assigned the next free step; explicit step numbers are kept as given.
// Unknown recipe ids are no-ops.
func (s *Store) AddInstruction(recipeID string, input types.InstructionInput) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		step := input.StepNumber
		if step <= 0 {
			step = len(r.Instructions) + 1
		}
		r.Instructions = append(r.Instructions, types.Instruction{
			ID:         s.newID(),
			StepNumber: step,
			Text:       input.Text,
		})
		r.DateModified = s.now()
		return true
	})
}

// UpdateInstruction merges the non-nil patch fields into one instruction of
// the given recipe and refreshes the recipe's DateModified. Unknown recipe
// or instruction ids are no-ops.
func (s *Store) UpdateInstruction(recipeID, instructionID string, patch types.InstructionPatch) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		for i := range r.Instructions {
			if r.Instructions[i].ID != instructionID {
				continue
			}
			if patch.Text != nil {
				r.Instructions[i].Text = *patch.Text
			}
			r.DateModified = s.now()
			return true
		}
		return false
	})
}

// RemoveInstruction deletes one instruction of the given recipe, renumbers
// the remaining steps to stay contiguous, and refreshes the recipe's
// DateModified. Unknown recipe or instruction ids are no-ops.
func (s *Store) RemoveInstruction(recipeID, instructionID string) {
	s.apply(true, func(st *State) bool {
		r := st.find(recipeID)
		if r == nil {
			return false
		}
		for i := range r.Instructions {
			if r.Instructions[i].ID == instructionID {
				r.Instructions = append(r.Instructions[:i], r.Instructions[i+1:]...)
				for j := range r.Instructions {
					r.Instructions[j].StepNumber = j + 1
				}
				r.DateModified = s.now()
				return true
			}
		}
		return false
	})
}

// SelectRecipe makes the recipe with the given id the current selection and
// exits edit mode. An empty or unknown id clears the selection.
func (s *Store) SelectRecipe(id string) {
	s.apply(false, func(st *State) bool {
		target := id
		if target != "" && st.find(target) == nil {
			target = ""
		}
		if st.SelectedRecipeID == target && !st.IsEditing {
			return false
		}
		st.SelectedRecipeID = target
		st.IsEditing = false
		return true
	})
}

// StartEditing enters edit mode.
func (s *Store) StartEditing() {
	s.setFlag(func(st *State) *bool { return &st.IsEditing }, true)
}

// FinishEditing leaves edit mode.
func (s *Store) FinishEditing() {
	s.setFlag(func(st *State) *bool { return &st.IsEditing }, false)
}

// StartCreating enters creating mode and clears the selection.
func (s *Store) StartCreating() {
	s.apply(false, func(st *State) bool {
		if st.IsCreating && st.SelectedRecipeID == "" {
			return false
		}
		st.IsCreating = true
		st.SelectedRecipeID = ""
		return true
	})
}

// CancelCreating leaves creating mode.
func (s *Store) CancelCreating() {
	s.setFlag(func(st *State) *bool { return &st.IsCreating }, false)
}

// SetSearchTerm sets the search term used by the filtered recipe view.
func (s *Store) SetSearchTerm(term string) {
	s.apply(false, func(st *State) bool {
		if st.SearchTerm == term {
			return false
		}
		st.SearchTerm = term
		return true
	})
}

// SetFilterCategory sets the category filter used by the filtered recipe
// view. An empty category disables the filter.
func (s *Store) SetFilterCategory(category string) {
	s.apply(false, func(st *State) bool {
		if st.FilterCategory == category {
			return false
		}
		st.FilterCategory = category
		return true
	})
}

// apply runs a transition against a private copy of the current state.
// When the transition reports a change the copy becomes the new state and
// subscribers are notified; collection transitions are also persisted.
func (s *Store) apply(persist bool, fn func(*State) bool) {
	s.mu.Lock()
	next := s.state.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	var recipes []types.Recipe
	if persist {
		recipes = types.CloneRecipes(next.Recipes)
	}
	s.mu.Unlock()

	if persist {
		s.persist(recipes)
	}
	s.notify()
}

func (s *Store) setFlag(field func(*State) *bool, value bool) {
	s.apply(false, func(st *State) bool {
		f := field(st)
		if *f == value {
			return false
		}
		*f = value
		return true
	})
}

// applyRemote replaces the collection with a snapshot delivered by the
// repository. The selection is cleared if its recipe is gone; the other UI
// flags are untouched.
func (s *Store) applyRemote(recipes []types.Recipe) {
	s.mu.Lock()
	s.state.Recipes = types.CloneRecipes(recipes)
	if s.state.Recipes == nil {
		s.state.Recipes = []types.Recipe{}
	}
	s.state.dropDanglingSelection()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) persist(recipes []types.Recipe) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, recipes); err != nil {
		log.Printf("[Store] failed to persist recipe collection: %v", err)
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
