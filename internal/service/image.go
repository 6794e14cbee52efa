package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
)

// maxImageBytes caps a downloaded image. DALL-E 3 PNGs are a few MB.
const maxImageBytes = 20 << 20

// ImageStore persists image bytes and returns a URL for them
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageService generates dish images and, when a store is configured,
// mirrors them so the returned URL outlives the provider's temporary link.
type ImageService struct {
	generator recipe.ImageGenerator
	store     ImageStore
	client    *http.Client
	maxBytes  int64
	log       *logger.Logger
}

// NewImageService creates a new ImageService. store may be nil, in which case
// provider URLs are returned unchanged.
func NewImageService(generator recipe.ImageGenerator, store ImageStore, log *logger.Logger) *ImageService {
	return &ImageService{
		generator: generator,
		store:     store,
		client:    &http.Client{Timeout: 60 * time.Second},
		maxBytes:  maxImageBytes,
		log:       log,
	}
}

// GenerateImage implements recipe.ImageGenerator. Mirroring failures are
// logged and the provider URL is returned instead.
func (s *ImageService) GenerateImage(ctx context.Context, description string) (string, error) {
	imageURL, err := s.generator.GenerateImage(ctx, description)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return imageURL, nil
	}

	storedURL, err := s.downloadAndUpload(ctx, imageURL)
	if err != nil {
		s.log.Warn("failed to mirror generated image, returning original URL", "error", err)
		return imageURL, nil
	}
	return storedURL, nil
}

func (s *ImageService) downloadAndUpload(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > s.maxBytes {
		return "", fmt.Errorf("image exceeds %d bytes", s.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	key := fmt.Sprintf("dish-images/%s.png", uuid.New().String())
	url, err := s.store.Upload(ctx, key, imageData, contentType)
	if err != nil {
		return "", err
	}

	s.log.Info("mirrored generated image", "key", key)
	return url, nil
}
