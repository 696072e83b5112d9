package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/simmer-app/simmer-backend/internal/types"
)

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 10 * time.Second}

	seeded := 0
	for _, recipe := range seedRecipes() {
		payload, err := json.Marshal(recipe)
		if err != nil {
			log.Fatalf("Failed to encode recipe %q: %v", recipe.Title, err)
		}

		resp, err := client.Post(apiURL+"/api/v1/recipes", "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("Failed to create recipe %q: %v", recipe.Title, err)
		}
		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			log.Fatalf("Failed to create recipe %q: %s: %s", recipe.Title, resp.Status, body)
		}
		resp.Body.Close()

		log.Printf("Successfully created recipe: %s", recipe.Title)
		seeded++
	}

	log.Printf("Successfully seeded %d recipes", seeded)
}

func seedRecipes() []types.RecipeInput {
	return []types.RecipeInput{
		{
			Title:       "Classic Apple Pie",
			Description: "Double-crust apple pie with a flaky all-butter pastry.",
			Ingredients: []types.IngredientInput{
				{Name: "Granny Smith apples", Amount: 6, Unit: "whole", Preparation: "peeled and sliced"},
				{Name: "All-purpose flour", Amount: 2.5, Unit: "cups"},
				{Name: "Unsalted butter", Amount: 225, Unit: "g", Preparation: "cold, cubed"},
				{Name: "Sugar", Amount: 0.75, Unit: "cup"},
				{Name: "Cinnamon", Amount: 1, Unit: "tsp"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Cut the butter into the flour and bring the dough together with ice water. Chill for an hour."},
				{Text: "Toss the apple slices with sugar and cinnamon."},
				{Text: "Roll out the crusts, fill, and crimp the edges."},
				{Text: "Bake at 200C for 45 minutes until golden."},
			},
			PrepTime:   45,
			CookTime:   45,
			Servings:   8,
			Category:   []string{"Dessert", "Baking"},
			Cuisine:    "American",
			Difficulty: types.DifficultyMedium,
			Nutrition:  &types.Nutrition{Calories: 410, Protein: 4, Carbs: 58, Fat: 19},
			Author:     "Simmer Kitchen",
			Notes:      "Tart apples hold their shape better than sweet ones.",
		},
		{
			Title:       "Slow Beef Stew",
			Description: "Beef chuck braised with root vegetables and red wine.",
			Ingredients: []types.IngredientInput{
				{Name: "Beef chuck", Amount: 1, Unit: "kg", Preparation: "cut into chunks"},
				{Name: "Carrots", Amount: 4, Unit: "whole", Preparation: "thickly sliced"},
				{Name: "Yellow onion", Amount: 2, Unit: "whole", Preparation: "diced"},
				{Name: "Red wine", Amount: 250, Unit: "ml"},
				{Name: "Beef stock", Amount: 750, Unit: "ml"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Brown the beef in batches in a heavy pot."},
				{Text: "Soften the onions, then deglaze with the wine."},
				{Text: "Return the beef, add stock and carrots, and simmer covered for two hours."},
				{Text: "Season and serve over mashed potatoes."},
			},
			PrepTime:   25,
			CookTime:   150,
			Servings:   6,
			Category:   []string{"Dinner"},
			Cuisine:    "French",
			Difficulty: types.DifficultyEasy,
			Author:     "Simmer Kitchen",
		},
		{
			Title:       "Gazpacho",
			Description: "Chilled Andalusian tomato soup, no cooking required.",
			Ingredients: []types.IngredientInput{
				{Name: "Ripe tomatoes", Amount: 1, Unit: "kg"},
				{Name: "Cucumber", Amount: 1, Unit: "whole", Preparation: "peeled"},
				{Name: "Green pepper", Amount: 1, Unit: "whole"},
				{Name: "Olive oil", Amount: 75, Unit: "ml"},
				{Name: "Sherry vinegar", Amount: 2, Unit: "tbsp"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Blend the vegetables until completely smooth."},
				{Text: "Stream in the olive oil with the motor running."},
				{Text: "Season, then chill for at least two hours before serving."},
			},
			PrepTime:   20,
			CookTime:   0,
			Servings:   4,
			Category:   []string{"Soup", "Summer"},
			Cuisine:    "Spanish",
			Difficulty: types.DifficultyEasy,
			Nutrition:  &types.Nutrition{Calories: 190, Protein: 3, Carbs: 14, Fat: 15},
			Author:     "Simmer Kitchen",
		},
		{
			Title:       "Pad Thai",
			Description: "Stir-fried rice noodles with tamarind, egg and peanuts.",
			Ingredients: []types.IngredientInput{
				{Name: "Flat rice noodles", Amount: 200, Unit: "g", Preparation: "soaked"},
				{Name: "Tamarind paste", Amount: 2, Unit: "tbsp"},
				{Name: "Fish sauce", Amount: 2, Unit: "tbsp"},
				{Name: "Eggs", Amount: 2, Unit: "whole"},
				{Name: "Roasted peanuts", Amount: 50, Unit: "g", Preparation: "crushed"},
				{Name: "Bean sprouts", Amount: 100, Unit: "g"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Mix tamarind, fish sauce and sugar into a sauce."},
				{Text: "Stir-fry the noodles over high heat, pushing them aside to scramble the eggs."},
				{Text: "Toss with the sauce and bean sprouts, then top with peanuts and lime."},
			},
			PrepTime:   30,
			CookTime:   10,
			Servings:   2,
			Category:   []string{"Dinner", "Noodles"},
			Cuisine:    "Thai",
			Difficulty: types.DifficultyMedium,
			Author:     "Simmer Kitchen",
			Notes:      "Have everything measured before the wok goes on the heat.",
		},
		{
			Title:       "Margherita Pizza",
			Description: "Neapolitan-style pizza with tomato, mozzarella and basil.",
			Ingredients: []types.IngredientInput{
				{Name: "Bread flour", Amount: 500, Unit: "g"},
				{Name: "Instant yeast", Amount: 7, Unit: "g"},
				{Name: "San Marzano tomatoes", Amount: 400, Unit: "g", Preparation: "crushed"},
				{Name: "Fresh mozzarella", Amount: 250, Unit: "g", Preparation: "torn"},
				{Name: "Basil leaves", Amount: 12, Unit: "whole"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Knead the dough and let it rise until doubled."},
				{Text: "Shape the bases and top with tomato and mozzarella."},
				{Text: "Bake as hot as the oven goes, then finish with basil."},
			},
			PrepTime:   120,
			CookTime:   10,
			Servings:   4,
			Category:   []string{"Dinner", "Baking"},
			Cuisine:    "Italian",
			Difficulty: types.DifficultyHard,
			Author:     "Simmer Kitchen",
		},
		{
			Title:       "Shakshuka",
			Description: "Eggs poached in a spiced tomato and pepper sauce.",
			Ingredients: []types.IngredientInput{
				{Name: "Eggs", Amount: 4, Unit: "whole"},
				{Name: "Canned tomatoes", Amount: 400, Unit: "g"},
				{Name: "Red peppers", Amount: 2, Unit: "whole", Preparation: "sliced"},
				{Name: "Ground cumin", Amount: 1, Unit: "tsp"},
				{Name: "Smoked paprika", Amount: 1, Unit: "tsp"},
			},
			Instructions: []types.InstructionInput{
				{Text: "Soften the peppers, then add the spices and tomatoes."},
				{Text: "Simmer until thick, make wells, and crack in the eggs."},
				{Text: "Cover until the whites set and serve with bread."},
			},
			PrepTime:   10,
			CookTime:   25,
			Servings:   2,
			Category:   []string{"Breakfast", "Brunch"},
			Cuisine:    "Middle Eastern",
			Difficulty: types.DifficultyEasy,
			Nutrition:  &types.Nutrition{Calories: 320, Protein: 17, Carbs: 18, Fat: 21},
			Author:     "Simmer Kitchen",
		},
	}
}
