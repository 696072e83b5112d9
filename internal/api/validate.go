package api

import (
	"fmt"
	"strings"

	"github.com/simmer-app/simmer-backend/internal/types"
)

// FieldError describes a single invalid field in a request payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validDifficulties = map[string]bool{
	types.DifficultyEasy:   true,
	types.DifficultyMedium: true,
	types.DifficultyHard:   true,
}

// validateRecipeInput checks a create payload and returns one error per
// invalid field
func validateRecipeInput(input *types.RecipeInput) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(input.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if len(input.Ingredients) == 0 {
		errs = append(errs, FieldError{Field: "ingredients", Message: "at least one ingredient is required"})
	}
	for i := range input.Ingredients {
		errs = append(errs, validateIngredientInput(fmt.Sprintf("ingredients[%d]", i), &input.Ingredients[i])...)
	}
	if len(input.Instructions) == 0 {
		errs = append(errs, FieldError{Field: "instructions", Message: "at least one instruction is required"})
	}
	for i := range input.Instructions {
		errs = append(errs, validateInstructionInput(fmt.Sprintf("instructions[%d]", i), &input.Instructions[i])...)
	}
	if input.PrepTime < 0 {
		errs = append(errs, FieldError{Field: "prepTime", Message: "prep time must not be negative"})
	}
	if input.CookTime < 0 {
		errs = append(errs, FieldError{Field: "cookTime", Message: "cook time must not be negative"})
	}
	if input.Servings < 1 {
		errs = append(errs, FieldError{Field: "servings", Message: "servings must be at least 1"})
	}
	if input.Difficulty != "" && !validDifficulties[input.Difficulty] {
		errs = append(errs, FieldError{Field: "difficulty", Message: "difficulty must be one of easy, medium, hard"})
	}
	errs = append(errs, validateNutrition("nutrition", input.Nutrition)...)

	return errs
}

// validateRecipePatch checks an update payload; only fields present in the
// patch are checked
func validateRecipePatch(patch *types.RecipePatch) []FieldError {
	var errs []FieldError

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title must not be empty"})
	}
	if patch.PrepTime != nil && *patch.PrepTime < 0 {
		errs = append(errs, FieldError{Field: "prepTime", Message: "prep time must not be negative"})
	}
	if patch.CookTime != nil && *patch.CookTime < 0 {
		errs = append(errs, FieldError{Field: "cookTime", Message: "cook time must not be negative"})
	}
	if patch.Servings != nil && *patch.Servings < 1 {
		errs = append(errs, FieldError{Field: "servings", Message: "servings must be at least 1"})
	}
	if patch.Difficulty != nil && *patch.Difficulty != "" && !validDifficulties[*patch.Difficulty] {
		errs = append(errs, FieldError{Field: "difficulty", Message: "difficulty must be one of easy, medium, hard"})
	}
	errs = append(errs, validateNutrition("nutrition", patch.Nutrition)...)

	return errs
}

func validateIngredientInput(field string, input *types.IngredientInput) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, FieldError{Field: field + ".name", Message: "ingredient name is required"})
	}
	if input.Amount < 0 {
		errs = append(errs, FieldError{Field: field + ".amount", Message: "amount must not be negative"})
	}

	return errs
}

func validateIngredientPatch(patch *types.IngredientPatch) []FieldError {
	var errs []FieldError

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "ingredient name must not be empty"})
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "amount must not be negative"})
	}

	return errs
}

func validateInstructionInput(field string, input *types.InstructionInput) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(input.Text) == "" {
		errs = append(errs, FieldError{Field: field + ".text", Message: "instruction text is required"})
	}
	if input.StepNumber < 0 {
		errs = append(errs, FieldError{Field: field + ".stepNumber", Message: "step number must not be negative"})
	}

	return errs
}

func validateInstructionPatch(patch *types.InstructionPatch) []FieldError {
	var errs []FieldError

	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		errs = append(errs, FieldError{Field: "text", Message: "instruction text must not be empty"})
	}

	return errs
}

func validateNutrition(field string, n *types.Nutrition) []FieldError {
	if n == nil {
		return nil
	}

	var errs []FieldError
	values := []struct {
		name  string
		value float64
	}{
		{field + ".calories", n.Calories},
		{field + ".protein", n.Protein},
		{field + ".carbs", n.Carbs},
		{field + ".fat", n.Fat},
	}
	for _, v := range values {
		if v.value < 0 {
			errs = append(errs, FieldError{Field: v.name, Message: "nutrition values must not be negative"})
		}
	}

	return errs
}
