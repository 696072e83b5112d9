package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/types"
)

// maxImageSize caps recipe image uploads at 5 MB.
const maxImageSize = 5 << 20

// UploadRecipeImage stores a multipart image upload for a recipe and patches
// the recipe's image URL with the stored object's public URL.
func (h *RecipeHandler) UploadRecipeImage(c *gin.Context) {
	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	id := c.Param("id")
	if _, ok := h.store.Recipe(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Image must not exceed %d bytes", maxImageSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image upload"})
		return
	}
	defer func() { _ = file.Close() }()

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image upload"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	imageURL, err := h.imageService.UploadRecipeImage(c.Request.Context(), id, imageData, contentType)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImageType) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	h.store.UpdateRecipe(id, types.RecipePatch{ImageURL: &imageURL})

	recipe, _ := h.store.Recipe(id)
	c.JSON(http.StatusOK, recipe)
}
