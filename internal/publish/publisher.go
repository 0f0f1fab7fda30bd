// Package publish moves due drafts into the published area.
//
// A draft is Due once its scheduled minute has been reached. Publishing copies
// the body into the posts area, puts a trimmed record at the head of the
// published manifest, drops the draft entry and deletes the draft body, in that
// order. Each write is atomic on its own; Reconcile finishes a transition that
// was interrupted between steps.
package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/drafts"
	"NewsDesk/internal/store"
)

// ErrNoContent marks a due draft whose body file is missing.
var ErrNoContent = errors.New("draft content missing")

// Options configures a Publisher.
type Options struct {
	PostsDir string
	Author   string
	Location *time.Location
	Logger   *slog.Logger
}

// Publisher drives the draft state machine.
type Publisher struct {
	drafts    *drafts.Manifest
	published *Manifest
	postsDir  string
	author    string
	loc       *time.Location
	logger    *slog.Logger
}

// New wires a Publisher over the two manifests.
func New(d *drafts.Manifest, p *Manifest, opts Options) *Publisher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Author == "" {
		opts.Author = drafts.DefaultAuthor
	}
	return &Publisher{
		drafts:    d,
		published: p,
		postsDir:  opts.PostsDir,
		author:    opts.Author,
		loc:       opts.Location,
		logger:    opts.Logger,
	}
}

// PostPath returns where a published body lives.
func (p *Publisher) PostPath(slug string) string {
	return filepath.Join(p.postsDir, slug+".md")
}

// ChangedPaths lists the files a publication of slug touches.
func (p *Publisher) ChangedPaths(slug string) []string {
	return []string{
		p.PostPath(slug),
		p.drafts.ContentPath(slug),
		p.published.Path(),
		p.drafts.Path(),
	}
}

type dueDraft struct {
	meta domain.DraftMetadata
	at   time.Time
}

// Due returns the drafts whose scheduled time is not after now, earliest first.
// Drafts with an unparseable schedule are reported as skipped.
func (p *Publisher) Due(now time.Time) ([]domain.DraftMetadata, []domain.Outcome) {
	var (
		due     []dueDraft
		skipped []domain.Outcome
	)
	for _, d := range p.drafts.Posts() {
		if d.Scheduled == nil || strings.TrimSpace(*d.Scheduled) == "" {
			continue
		}
		at, err := time.ParseInLocation(domain.MinuteLayout, strings.TrimSpace(*d.Scheduled), p.loc)
		if err != nil {
			p.logger.Warn("unparseable schedule", "slug", d.Slug, "scheduled", *d.Scheduled)
			skipped = append(skipped, domain.Skipped("", d.Slug, "unparseable schedule "+*d.Scheduled))
			continue
		}
		if at.After(now) {
			continue
		}
		due = append(due, dueDraft{meta: d, at: at})
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	out := make([]domain.DraftMetadata, len(due))
	for i, d := range due {
		out[i] = d.meta
	}
	return out, skipped
}

// Tick reconciles leftovers of interrupted runs, then publishes every due draft.
// A tick that publishes nothing returns no outcomes and no error.
func (p *Publisher) Tick(now time.Time) ([]domain.Outcome, error) {
	if _, err := p.Reconcile(); err != nil {
		return nil, err
	}

	due, outcomes := p.Due(now)
	for _, d := range due {
		if err := p.publish(d); err != nil {
			p.logger.Error("publish failed", "slug", d.Slug, "error", err)
			outcomes = append(outcomes, domain.Failed("", d.Slug, err))
			continue
		}
		p.logger.Info("published", "slug", d.Slug, "scheduled", *d.Scheduled)
		outcomes = append(outcomes, domain.OK("", d.Slug, "published"))
	}
	return outcomes, nil
}

// PublishNow publishes one draft regardless of its schedule.
func (p *Publisher) PublishNow(slug string) error {
	if _, err := p.Reconcile(); err != nil {
		return err
	}
	d, ok := p.drafts.Get(slug)
	if !ok {
		return fmt.Errorf("%w: %s", drafts.ErrNotFound, slug)
	}
	if err := p.publish(d); err != nil {
		return err
	}
	p.logger.Info("published", "slug", slug, "manual", true)
	return nil
}

func (p *Publisher) publish(d domain.DraftMetadata) error {
	src := p.drafts.ContentPath(d.Slug)
	body, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoContent, src)
		}
		return fmt.Errorf("read draft body: %w", err)
	}

	if err := store.WriteFileAtomic(p.PostPath(d.Slug), body); err != nil {
		return fmt.Errorf("copy body: %w", err)
	}
	if err := p.published.Prepend(d.ToPublished(p.author)); err != nil {
		return err
	}
	if _, err := p.drafts.Remove(d.Slug); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft body: %w", err)
	}
	return nil
}

// Reconcile completes transitions cut short by a crash: drafts already in the
// published manifest lose their draft entry, and draft bodies left behind for
// published slugs are deleted. It returns the repaired slugs.
func (p *Publisher) Reconcile() ([]string, error) {
	var stale []string
	for _, d := range p.drafts.Posts() {
		if p.published.Has(d.Slug) {
			stale = append(stale, d.Slug)
		}
	}
	if len(stale) > 0 {
		if _, err := p.drafts.Remove(stale...); err != nil {
			return nil, fmt.Errorf("reconcile drafts manifest: %w", err)
		}
	}

	entries, err := os.ReadDir(p.drafts.Dir())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reconcile drafts dir: %w", err)
	}
	repaired := stale
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if !p.published.Has(slug) || p.drafts.Has(slug) {
			continue
		}
		if err := os.Remove(filepath.Join(p.drafts.Dir(), name)); err != nil {
			return nil, fmt.Errorf("reconcile draft body %s: %w", slug, err)
		}
		if !slices.Contains(repaired, slug) {
			repaired = append(repaired, slug)
		}
	}

	for _, slug := range repaired {
		p.logger.Warn("reconciled interrupted publish", "slug", slug)
	}
	return repaired, nil
}
