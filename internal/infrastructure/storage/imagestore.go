// internal/infrastructure/storage/imagestore.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
)

// ImageRef identifies a stored image: a public URL for display and an opaque
// handle used to delete the object later
type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ImageStore is the external image storage collaborator
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*ImageRef, error)
	Delete(ctx context.Context, publicID string) error
}

// LocalStore stores images on the local filesystem
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewImageStore creates an image store for the configured provider
func NewImageStore(cfg *config.Config) (ImageStore, error) {
	switch cfg.Storage.Provider {
	case "local":
		return NewLocalStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

// NewLocalStore creates a local filesystem image store
func NewLocalStore(cfg *config.Config) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Storage.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: cfg.Storage.LocalPath,
		baseURL:  strings.TrimSuffix(cfg.Storage.BaseURL, "/"),
	}, nil
}

// Upload stores the image under a generated handle
func (s *LocalStore) Upload(ctx context.Context, filename string, r io.Reader) (*ImageRef, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	publicID := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.basePath, publicID))
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	return &ImageRef{
		URL:      s.baseURL + "/" + publicID,
		PublicID: publicID,
	}, nil
}

// Delete removes a stored image by its handle
func (s *LocalStore) Delete(ctx context.Context, publicID string) error {
	// Handles are generated server-side, but never trust them as paths.
	if publicID != filepath.Base(publicID) {
		return fmt.Errorf("invalid public ID: %s", publicID)
	}
	if err := os.Remove(filepath.Join(s.basePath, publicID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}
