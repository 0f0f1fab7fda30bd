// Package drafts owns the pending-post manifest and the drafts content area.
package drafts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NewsDesk/internal/dedup"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/store"
)

var (
	ErrEmptyBody    = errors.New("generated body is empty")
	ErrDuplicateURL = errors.New("source already drafted or published")
	ErrNotFound     = errors.New("draft not found")
)

// DefaultAuthor is written into drafts when no author is configured.
const DefaultAuthor = "DirtiestShips"

const (
	maxExcerptRunes = 200
	contentExt      = ".md"
)

// Options configures a drafts Manifest.
type Options struct {
	ManifestPath string
	Dir          string
	Author       string
	Location     *time.Location
	Now          func() time.Time
	Logger       *slog.Logger
}

// Manifest is the in-memory view of the drafts manifest plus the URL and slug
// sets used to keep new drafts unique. Every mutation is persisted before it
// returns.
type Manifest struct {
	path   string
	dir    string
	author string
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	posts []domain.DraftMetadata
	urls  *dedup.Set
	slugs *dedup.Set
}

// Open loads the drafts manifest. Source URLs and slugs of already published
// posts are folded into the uniqueness sets.
func Open(opts Options, published []domain.PublishedPost) (*Manifest, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}

	posts, err := store.LoadManifest[domain.DraftMetadata](opts.ManifestPath, opts.Logger)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		path:   opts.ManifestPath,
		dir:    opts.Dir,
		author: opts.Author,
		loc:    opts.Location,
		now:    opts.Now,
		logger: opts.Logger,
		posts:  posts,
		urls:   dedup.New(),
		slugs:  dedup.New(),
	}
	for _, p := range posts {
		m.urls.Register(p.SourceURL)
		m.slugs.Register(p.Slug)
	}
	for _, p := range published {
		m.urls.Register(p.SourceURL)
		m.slugs.Register(p.Slug)
	}
	return m, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string { return m.path }

// Dir returns the drafts content directory.
func (m *Manifest) Dir() string { return m.dir }

// ContentPath returns where the body of slug lives.
func (m *Manifest) ContentPath(slug string) string {
	return filepath.Join(m.dir, slug+contentExt)
}

// Posts returns a copy of the drafts in manifest order.
func (m *Manifest) Posts() []domain.DraftMetadata {
	return append([]domain.DraftMetadata(nil), m.posts...)
}

// Get looks a draft up by slug.
func (m *Manifest) Get(slug string) (domain.DraftMetadata, bool) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return domain.DraftMetadata{}, false
}

// Has reports whether slug is a pending draft.
func (m *Manifest) Has(slug string) bool {
	_, ok := m.Get(slug)
	return ok
}

// Seen reports whether a source URL was already drafted or published.
func (m *Manifest) Seen(link string) bool {
	return m.urls.IsDuplicate(link)
}

type createConfig struct {
	featuredImage string
}

// CreateOption customises a single Create call.
type CreateOption func(*createConfig)

// WithFeaturedImage sets the draft's featured image URL.
func WithFeaturedImage(url string) CreateOption {
	return func(c *createConfig) { c.featuredImage = url }
}

// Create writes the body to the drafts area and appends its metadata to the
// manifest. baseSlug defaults to the slugified title; a taken slug gets a
// numeric suffix.
func (m *Manifest) Create(item domain.NewsItem, body, baseSlug string, opts ...CreateOption) (domain.DraftMetadata, error) {
	var cfg createConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	link := item.Link()
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.DraftMetadata{}, ErrEmptyBody
	}
	if link != "" && m.Seen(link) {
		return domain.DraftMetadata{}, fmt.Errorf("%w: %s", ErrDuplicateURL, link)
	}

	if baseSlug == "" {
		baseSlug = Slugify(item.Title)
	}
	if baseSlug == "" {
		baseSlug = "post"
	}
	slug := UniqueSlug(baseSlug, m.slugs.Contains)

	meta := domain.DraftMetadata{
		Slug:          slug,
		Title:         strings.TrimSpace(item.Title),
		Date:          item.Date,
		Excerpt:       Excerpt(item.Summary),
		Author:        m.author,
		SourceURL:     link,
		SourceName:    item.Source,
		Score:         item.Score,
		FeaturedImage: cfg.featuredImage,
		Created:       m.now().In(m.loc).Format(domain.MinuteLayout),
	}

	contentPath := m.ContentPath(slug)
	if err := store.WriteFileAtomic(contentPath, []byte(body+"\n")); err != nil {
		return domain.DraftMetadata{}, fmt.Errorf("write draft body: %w", err)
	}

	posts := append(m.Posts(), meta)
	if err := store.SaveManifest(m.path, posts); err != nil {
		if rmErr := os.Remove(contentPath); rmErr != nil {
			m.logger.Warn("remove orphan draft body", "path", contentPath, "error", rmErr)
		}
		return domain.DraftMetadata{}, fmt.Errorf("save drafts manifest: %w", err)
	}

	m.posts = posts
	m.urls.Register(link)
	m.slugs.Register(slug)
	return meta, nil
}

// Schedule sets the publication time of a draft, or clears it when at is nil.
func (m *Manifest) Schedule(slug string, at *time.Time) (domain.DraftMetadata, error) {
	posts := m.Posts()
	for i := range posts {
		if posts[i].Slug != slug {
			continue
		}
		if at == nil {
			posts[i].Scheduled = nil
		} else {
			stamp := at.In(m.loc).Format(domain.MinuteLayout)
			posts[i].Scheduled = &stamp
		}
		if err := store.SaveManifest(m.path, posts); err != nil {
			return domain.DraftMetadata{}, fmt.Errorf("save drafts manifest: %w", err)
		}
		m.posts = posts
		return posts[i], nil
	}
	return domain.DraftMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

// Remove drops the given slugs from the manifest and reports how many were
// removed. The manifest is only rewritten when something changed.
func (m *Manifest) Remove(slugs ...string) (int, error) {
	drop := dedup.New(slugs...)
	kept := make([]domain.DraftMetadata, 0, len(m.posts))
	for _, p := range m.posts {
		if drop.Contains(p.Slug) {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(m.posts) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := store.SaveManifest(m.path, kept); err != nil {
		return 0, fmt.Errorf("save drafts manifest: %w", err)
	}
	m.posts = kept
	return removed, nil
}

// Excerpt shortens a summary to at most 200 runes.
func Excerpt(summary string) string {
	summary = strings.TrimSpace(summary)
	runes := []rune(summary)
	if len(runes) <= maxExcerptRunes {
		return summary
	}
	return string(runes[:maxExcerptRunes-3]) + "..."
}
