package store

import (
	"errors"
	"fmt"
	"log/slog"
)

const manifestIndent = "  "

type manifestFile[T any] struct {
	Posts []T `json:"posts"`
}

// LoadManifest reads a {"posts":[...]} document. A missing or malformed file
// yields an empty list; malformed files are logged.
func LoadManifest[T any](path string, logger *slog.Logger) ([]T, error) {
	var doc manifestFile[T]
	if _, err := ReadJSON(path, &doc); err != nil {
		if !errors.Is(err, ErrMalformed) {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("manifest unreadable, starting empty", "path", path, "error", err)
		return nil, nil
	}
	return doc.Posts, nil
}

// SaveManifest atomically writes posts as a {"posts":[...]} document.
func SaveManifest[T any](path string, posts []T) error {
	if posts == nil {
		posts = []T{}
	}
	return WriteJSON(path, manifestFile[T]{Posts: posts}, manifestIndent)
}
