package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simmer-app/simmer-backend/internal/middleware"
	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/store"
	"github.com/simmer-app/simmer-backend/internal/types"
)

type RecipeHandler struct {
	store        *store.Store
	imageService service.IImageService
	rateLimiter  *middleware.RateLimiter
}

func NewRecipeHandler(st *store.Store, imageService service.IImageService, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		store:        st,
		imageService: imageService,
		rateLimiter:  rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/selected", h.GetSelectedRecipe)
		recipes.GET("/:id", h.GetRecipe)
	}

	// Mutations are throttled when a rate limiter is configured; reads
	// and the state feed stay unthrottled.
	writes := router.Group("/recipes")
	if h.rateLimiter != nil {
		writes.Use(h.rateLimiter.RateLimitMiddleware())
	}
	{
		writes.POST("", h.CreateRecipe)
		writes.PUT("/:id", h.UpdateRecipe)
		writes.DELETE("/:id", h.DeleteRecipe)
		writes.POST("/:id/favorite", h.ToggleFavorite)
		writes.POST("/:id/image", h.UploadRecipeImage)
		writes.POST("/:id/ingredients", h.AddIngredient)
		writes.PUT("/:id/ingredients/:ingredientID", h.UpdateIngredient)
		writes.DELETE("/:id/ingredients/:ingredientID", h.RemoveIngredient)
		writes.POST("/:id/instructions", h.AddInstruction)
		writes.PUT("/:id/instructions/:instructionID", h.UpdateInstruction)
		writes.DELETE("/:id/instructions/:instructionID", h.RemoveInstruction)
	}
}

// ListRecipes returns the collection filtered by the stored search term and
// category filter. Optional q and category query params update those filters
// before the list is computed.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	if term, ok := c.GetQuery("q"); ok {
		h.store.SetSearchTerm(term)
	}
	if category, ok := c.GetQuery("category"); ok {
		h.store.SetFilterCategory(category)
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": store.FilteredRecipes(h.store.State()),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, ok := h.store.Recipe(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetSelectedRecipe(c *gin.Context) {
	recipe, ok := store.SelectedRecipe(h.store.State())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No recipe selected"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var input types.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateRecipeInput(&input); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	recipe := h.store.CreateRecipe(input)
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var patch types.RecipePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateRecipePatch(&patch); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	h.store.UpdateRecipe(id, patch)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	h.store.DeleteRecipe(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	h.store.ToggleFavorite(id)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var input types.IngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateIngredientInput("ingredient", &input); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	h.store.AddIngredient(id, input)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateIngredient(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var patch types.IngredientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateIngredientPatch(&patch); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	h.store.UpdateIngredient(id, c.Param("ingredientID"), patch)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	h.store.RemoveIngredient(id, c.Param("ingredientID"))

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) AddInstruction(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var input types.InstructionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateInstructionInput("instruction", &input); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	h.store.AddInstruction(id, input)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateInstruction(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var patch types.InstructionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validateInstructionPatch(&patch); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	h.store.UpdateInstruction(id, c.Param("instructionID"), patch)

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) RemoveInstruction(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	h.store.RemoveInstruction(id, c.Param("instructionID"))

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}
