package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockImageService is a mock implementation of service.IImageService
type MockImageService struct {
	mock.Mock
}

// UploadRecipeImage mocks the UploadRecipeImage method
func (m *MockImageService) UploadRecipeImage(ctx context.Context, recipeID string, imageData []byte, contentType string) (string, error) {
	args := m.Called(ctx, recipeID, imageData, contentType)
	return args.String(0), args.Error(1)
}
