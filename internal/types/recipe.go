package types

import "time"

// Difficulty levels accepted on a recipe.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Recipe represents a single recipe in the shared collection. The JSON tags
// define the wire format used by both the HTTP API and the synced document,
// so renaming a field here is a breaking protocol change.
type Recipe struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	PrepTime     int           `json:"prepTime"`
	CookTime     int           `json:"cookTime"`
	Servings     int           `json:"servings"`
	Category     []string      `json:"category"`
	Cuisine      string        `json:"cuisine"`
	Difficulty   string        `json:"difficulty"`
	Nutrition    *Nutrition    `json:"nutrition,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Author       string        `json:"author"`
	DateCreated  time.Time     `json:"dateCreated"`
	DateModified time.Time     `json:"dateModified"`
	Notes        string        `json:"notes,omitempty"`
	IsFavorite   bool          `json:"isFavorite"`
}

// Ingredient represents one entry of a recipe's ingredient list.
type Ingredient struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Unit        string  `json:"unit"`
	Preparation string  `json:"preparation,omitempty"`
}

// Instruction represents one step of a recipe. StepNumber is 1-based and
// kept contiguous by the store whenever steps are added or removed.
type Instruction struct {
	ID         string `json:"id"`
	StepNumber int    `json:"stepNumber"`
	Text       string `json:"text"`
}

// Nutrition holds optional per-serving nutritional facts. Calories,
// protein, carbs and fat are always present once a nutrition block exists;
// the remaining fields are optional.
type Nutrition struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
}

// Clone returns a deep copy of the nutrition block.
func (n *Nutrition) Clone() *Nutrition {
	if n == nil {
		return nil
	}
	out := *n
	if n.Sugar != nil {
		v := *n.Sugar
		out.Sugar = &v
	}
	if n.Sodium != nil {
		v := *n.Sodium
		out.Sodium = &v
	}
	if n.Fiber != nil {
		v := *n.Fiber
		out.Fiber = &v
	}
	return &out
}

// Clone returns a deep copy of the recipe. The store hands out and keeps
// only clones so that snapshots never alias each other's slices.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = make([]Ingredient, len(r.Ingredients))
		copy(out.Ingredients, r.Ingredients)
	}
	if r.Instructions != nil {
		out.Instructions = make([]Instruction, len(r.Instructions))
		copy(out.Instructions, r.Instructions)
	}
	if r.Category != nil {
		out.Category = make([]string, len(r.Category))
		copy(out.Category, r.Category)
	}
	out.Nutrition = r.Nutrition.Clone()
	return out
}

// CloneRecipes returns a deep copy of a recipe slice.
func CloneRecipes(recipes []Recipe) []Recipe {
	if recipes == nil {
		return nil
	}
	out := make([]Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = r.Clone()
	}
	return out
}
