package service

import (
	"context"
)

// IImageService defines the interface for recipe image storage operations
type IImageService interface {
	UploadRecipeImage(ctx context.Context, recipeID string, imageData []byte, contentType string) (string, error)
}
