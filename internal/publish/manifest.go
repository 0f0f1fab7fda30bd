package publish

import (
	"fmt"
	"log/slog"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/store"
)

// Manifest is the public, newest-first list of published posts.
type Manifest struct {
	path  string
	posts []domain.PublishedPost
}

// OpenManifest loads the published manifest; a malformed file is treated as empty.
func OpenManifest(path string, logger *slog.Logger) (*Manifest, error) {
	posts, err := store.LoadManifest[domain.PublishedPost](path, logger)
	if err != nil {
		return nil, err
	}
	return &Manifest{path: path, posts: posts}, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string { return m.path }

// Posts returns a copy of the published posts, newest first.
func (m *Manifest) Posts() []domain.PublishedPost {
	return append([]domain.PublishedPost(nil), m.posts...)
}

// Has reports whether slug is published.
func (m *Manifest) Has(slug string) bool {
	for _, p := range m.posts {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

// Prepend inserts post at the head and persists the manifest.
func (m *Manifest) Prepend(post domain.PublishedPost) error {
	posts := make([]domain.PublishedPost, 0, len(m.posts)+1)
	posts = append(posts, post)
	posts = append(posts, m.posts...)
	if err := store.SaveManifest(m.path, posts); err != nil {
		return fmt.Errorf("save published manifest: %w", err)
	}
	m.posts = posts
	return nil
}
