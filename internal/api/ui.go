package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simmer-app/simmer-backend/internal/store"
)

// UIHandler exposes the store state and the transient UI flag actions
type UIHandler struct {
	store *store.Store
}

func NewUIHandler(st *store.Store) *UIHandler {
	return &UIHandler{store: st}
}

// selectionRequest identifies the recipe to select. An empty id clears the
// selection.
type selectionRequest struct {
	RecipeID string `json:"recipeId"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type filterRequest struct {
	Category string `json:"category"`
}

func (h *UIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/state", h.GetState)
	router.GET("/ws", h.StreamState)

	ui := router.Group("/ui")
	{
		ui.PUT("/selection", h.SelectRecipe)
		ui.DELETE("/selection", h.ClearSelection)
		ui.POST("/editing/start", h.StartEditing)
		ui.POST("/editing/finish", h.FinishEditing)
		ui.POST("/creating/start", h.StartCreating)
		ui.POST("/creating/cancel", h.CancelCreating)
		ui.PUT("/search", h.SetSearchTerm)
		ui.PUT("/filter", h.SetFilterCategory)
	}
}

// GetState returns the full store snapshot for client bootstrap
func (h *UIHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

func (h *UIHandler) SelectRecipe(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SelectRecipe(req.RecipeID)
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) ClearSelection(c *gin.Context) {
	h.store.SelectRecipe("")
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) StartEditing(c *gin.Context) {
	h.store.StartEditing()
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) FinishEditing(c *gin.Context) {
	h.store.FinishEditing()
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) StartCreating(c *gin.Context) {
	h.store.StartCreating()
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) CancelCreating(c *gin.Context) {
	h.store.CancelCreating()
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) SetSearchTerm(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SetSearchTerm(req.Term)
	c.Status(http.StatusNoContent)
}

func (h *UIHandler) SetFilterCategory(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SetFilterCategory(req.Category)
	c.Status(http.StatusNoContent)
}
