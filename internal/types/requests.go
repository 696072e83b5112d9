package types

// RecipeInput carries the caller-supplied fields for creating a recipe.
// The store fills in the identifier and both timestamps.
type RecipeInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Ingredients  []IngredientInput  `json:"ingredients"`
	Instructions []InstructionInput `json:"instructions"`
	PrepTime     int                `json:"prepTime"`
	CookTime     int                `json:"cookTime"`
	Servings     int                `json:"servings"`
	Category     []string           `json:"category"`
	Cuisine      string             `json:"cuisine"`
	Difficulty   string             `json:"difficulty"`
	Nutrition    *Nutrition         `json:"nutrition,omitempty"`
	ImageURL     string             `json:"imageUrl"`
	Author       string             `json:"author"`
	Notes        string             `json:"notes"`
}

// RecipePatch is a partial update of a recipe's own fields. Nil fields are
// left untouched. Ingredient and instruction lists change only through
// their dedicated operations, never through a patch.
type RecipePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	PrepTime    *int       `json:"prepTime,omitempty"`
	CookTime    *int       `json:"cookTime,omitempty"`
	Servings    *int       `json:"servings,omitempty"`
	Category    *[]string  `json:"category,omitempty"`
	Cuisine     *string    `json:"cuisine,omitempty"`
	Difficulty  *string    `json:"difficulty,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	Author      *string    `json:"author,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// IngredientInput carries the caller-supplied fields for a new ingredient.
type IngredientInput struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Unit        string  `json:"unit"`
	Preparation string  `json:"preparation"`
}

// IngredientPatch is a partial update of a single ingredient.
type IngredientPatch struct {
	Name        *string  `json:"name,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Preparation *string  `json:"preparation,omitempty"`
}

// InstructionInput carries the caller-supplied fields for a new step. When
// StepNumber is zero the store appends the step at the end of the list.
type InstructionInput struct {
	StepNumber int    `json:"stepNumber"`
	Text       string `json:"text"`
}

// InstructionPatch is a partial update of a single instruction step.
type InstructionPatch struct {
	Text *string `json:"text,omitempty"`
}
