package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/simmer-app/simmer-backend/config"
)

// ErrUnsupportedImageType is returned when an upload carries a content type
// outside the accepted image formats.
var ErrUnsupportedImageType = errors.New("unsupported image content type")

// extensionsByContentType maps the image content types the API accepts to
// the file extension used for the stored object.
var extensionsByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService handles recipe image storage operations
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) (*ImageService, error) {
	if s3Config == nil || s3Config.Client == nil {
		return nil, fmt.Errorf("S3 configuration is required")
	}
	return &ImageService{s3Config: s3Config}, nil
}

// UploadRecipeImage uploads image data for a recipe to S3 and returns the public URL
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID string, imageData []byte, contentType string) (string, error) {
	ext, ok := extensionsByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}

	if len(imageData) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	// The random suffix keeps re-uploads for the same recipe from
	// overwriting each other while caches still hold the old object.
	fileName := fmt.Sprintf("recipe-images/%s-%s%s", recipeID, uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}
