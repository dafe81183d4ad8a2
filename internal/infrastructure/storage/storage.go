package storage

import (
	"context"
	"errors"
	"log/slog"

	"job-board/internal/config"
)

var ErrUpload = errors.New("resume upload failed")

// Store persists a file under key and returns a durable link to it.
type Store interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New picks Cloudinary when credentials are configured and the local
// filesystem otherwise.
func New(cfg config.StorageConfig, publicURL string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CloudinaryConfigured() {
		logger.Info("resume storage", "backend", "cloudinary", "cloud", cfg.CloudName)
		return NewCloudinary(cfg)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = publicURL + "/" + LocalRoute
	}
	logger.Info("resume storage", "backend", "local", "dir", cfg.LocalDir)
	return NewLocal(cfg.LocalDir, base)
}
