package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/drafts"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/scoring"
)

// DraftDeps wires the collaborators of a draft run. Generator is required.
type DraftDeps struct {
	Generator ports.Generator
	Images    ports.ImageFinder
	Syncer    ports.Syncer
	Notifier  ports.Notifier
	Limiter   *rate.Limiter
	Threshold int
	Logger    *slog.Logger
}

// Drafter turns high-scoring archived articles into blog drafts.
type Drafter struct {
	generator ports.Generator
	images    ports.ImageFinder
	syncer    ports.Syncer
	notifier  ports.Notifier
	limiter   *rate.Limiter
	threshold int
	logger    *slog.Logger
}

// NewDrafter constructs the draft use case.
func NewDrafter(deps DraftDeps) *Drafter {
	if deps.Threshold <= 0 {
		deps.Threshold = scoring.BlogThreshold
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Drafter{
		generator: deps.Generator,
		images:    deps.Images,
		syncer:    deps.Syncer,
		notifier:  deps.Notifier,
		limiter:   deps.Limiter,
		threshold: deps.Threshold,
		logger:    deps.Logger,
	}
}

// Run walks the topic's archive by score, highest first, and drafts every
// article at or above the threshold that has not been drafted or published yet.
func (d *Drafter) Run(ctx context.Context, topic, archiveDir string, manifest *drafts.Manifest) (domain.Summary, error) {
	summary := domain.Summary{Command: "draft"}
	if d.generator == nil {
		return summary, errors.New("no text generator configured")
	}
	logger := d.logger.With("topic", topic)

	records, err := archive.LoadRecords(archiveDir, logger)
	if err != nil {
		return summary, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Score > records[j].Score })
	logger.Info("draft candidates", "articles", len(records), "threshold", d.threshold)

	for _, item := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if item.Score < d.threshold {
			break
		}
		outcome := d.draftOne(ctx, topic, item, manifest, logger)
		logOutcome(logger, outcome)
		summary.Add(outcome)
	}
	return summary, nil
}

func (d *Drafter) draftOne(ctx context.Context, topic string, item domain.NewsItem, manifest *drafts.Manifest, logger *slog.Logger) domain.Outcome {
	link := item.Link()
	title := strings.TrimSpace(item.Title)
	if title == "" || link == "" {
		return domain.Skipped(topic, item.Title, "record without title or source")
	}
	if manifest.Seen(link) {
		return domain.Skipped(topic, link, "already drafted")
	}

	content := item.Content
	if content == "" {
		content = item.Summary
	}
	if len([]rune(content)) < MinContentLength {
		return domain.Skipped(topic, link, "content too short")
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return domain.Failed(topic, link, err)
		}
	}
	body, err := d.generator.Generate(ctx, title, content, item.Source)
	if err != nil {
		return domain.Failed(topic, link, fmt.Errorf("generate: %w", err))
	}

	var opts []drafts.CreateOption
	if img := d.featuredImage(ctx, item); img != "" {
		opts = append(opts, drafts.WithFeaturedImage(img))
	}

	item.Title = title
	meta, err := manifest.Create(item, body, "", opts...)
	switch {
	case errors.Is(err, drafts.ErrEmptyBody):
		return domain.Skipped(topic, link, "empty generation")
	case errors.Is(err, drafts.ErrDuplicateURL):
		return domain.Skipped(topic, link, "already drafted")
	case err != nil:
		return domain.Failed(topic, link, err)
	}

	commit(ctx, d.syncer, logger, []string{manifest.ContentPath(meta.Slug), manifest.Path()},
		"New blog draft: "+meta.Slug)
	notify(ctx, d.notifier, logger, fmt.Sprintf("New draft awaiting review: %s\nScore: %d\n%s", meta.Title, meta.Score, meta.Slug))
	return domain.OK(topic, meta.Slug, fmt.Sprintf("draft from %s score %d", link, item.Score))
}

// featuredImage prefers the page's og:image and falls back to the image
// found when the article was archived.
func (d *Drafter) featuredImage(ctx context.Context, item domain.NewsItem) string {
	if d.images != nil {
		if img := d.images.FeaturedImage(ctx, item.Link()); img != "" {
			return img
		}
	}
	return item.Image
}
