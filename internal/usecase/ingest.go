package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/dedup"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/scoring"
)

// ErrFeedsUnreachable is returned when no feed of a topic could be fetched.
var ErrFeedsUnreachable = errors.New("no feed reachable")

const (
	// MinContentLength is the shortest article body worth keeping.
	MinContentLength = 100
	fallbackSummary  = 200
)

// Topic is one news stream: its scoring table, feeds and archive.
type Topic struct {
	Name    string
	Table   scoring.Table
	Feeds   []string
	Archive *archive.Archive
}

// IngestDeps wires the collaborators of an ingest run. Summarizer, Syncer,
// Notifier and Limiter may be nil.
type IngestDeps struct {
	Feeds      ports.FeedSource
	Extractor  ports.Extractor
	Summarizer ports.Summarizer
	Syncer     ports.Syncer
	Notifier   ports.Notifier
	Limiter    *rate.Limiter
	Now        func() time.Time
	Logger     *slog.Logger
}

// Ingestor implements the scrape workflow.
type Ingestor struct {
	feeds      ports.FeedSource
	extractor  ports.Extractor
	summarizer ports.Summarizer
	syncer     ports.Syncer
	notifier   ports.Notifier
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *slog.Logger
}

// NewIngestor constructs the scrape use case.
func NewIngestor(deps IngestDeps) *Ingestor {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Ingestor{
		feeds:      deps.Feeds,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		syncer:     deps.Syncer,
		notifier:   deps.Notifier,
		limiter:    deps.Limiter,
		now:        deps.Now,
		logger:     deps.Logger,
	}
}

// HistorySet collects the source URLs of the rolling index and both manifests.
func HistorySet(index []domain.NewsItem, pending []domain.DraftMetadata, published []domain.PublishedPost) *dedup.Set {
	seen := dedup.New()
	for _, it := range index {
		seen.Register(it.SourceURL)
		seen.Register(it.LegacyURL)
	}
	for _, d := range pending {
		seen.Register(d.SourceURL)
	}
	for _, p := range published {
		seen.Register(p.SourceURL)
	}
	return seen
}

// Run ingests every feed of the topic in order, archives the entries that pass
// the prefilter, dedup and score gates, flushes the index once and syncs it.
func (i *Ingestor) Run(ctx context.Context, topic Topic, seen *dedup.Set) (domain.Summary, error) {
	summary := domain.Summary{Command: "scrape"}
	if len(topic.Feeds) == 0 {
		return summary, fmt.Errorf("topic %s: no feeds configured", topic.Name)
	}
	if i.feeds == nil || i.extractor == nil {
		return summary, fmt.Errorf("topic %s: feed source and extractor are required", topic.Name)
	}
	logger := i.logger.With("topic", topic.Name)

	var (
		archived   []domain.NewsItem
		failedFeed int
	)
	for _, feedURL := range topic.Feeds {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		entries, err := i.feeds.Fetch(ctx, feedURL)
		if err != nil {
			logger.Warn("feed failed", "feed", feedURL, "error", err)
			summary.Add(domain.Failed(topic.Name, feedURL, err))
			failedFeed++
			continue
		}

		for _, entry := range entries {
			if !topic.Table.MatchesTitle(entry.Title) {
				continue
			}
			outcome, item := i.ingestEntry(ctx, topic, entry, seen)
			logOutcome(logger, outcome)
			summary.Add(outcome)
			if item != nil {
				archived = append(archived, *item)
			}
		}
	}

	if failedFeed == len(topic.Feeds) {
		return summary, fmt.Errorf("topic %s: %w (%d feeds failed)", topic.Name, ErrFeedsUnreachable, failedFeed)
	}

	wrote, err := topic.Archive.Flush()
	if err != nil {
		return summary, fmt.Errorf("topic %s: %w", topic.Name, err)
	}
	if !wrote {
		logger.Info("no new items")
		return summary, nil
	}
	logger.Info("index updated", "added", len(archived), "size", topic.Archive.Len())

	commit(ctx, i.syncer, logger, []string{topic.Archive.IndexPath(), topic.Archive.Dir()},
		"Auto-update news: "+i.now().Format(domain.MinuteLayout))
	notify(ctx, i.notifier, logger, buildDigestMessage(topic.Name, archived))
	return summary, nil
}

func (i *Ingestor) ingestEntry(ctx context.Context, topic Topic, entry domain.FeedEntry, seen *dedup.Set) (domain.Outcome, *domain.NewsItem) {
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		return domain.Skipped(topic.Name, entry.Title, "entry without link"), nil
	}
	canonical := dedup.Canonical(link)
	if seen.IsDuplicate(link) {
		return domain.Skipped(topic.Name, canonical, "already seen"), nil
	}

	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return domain.Failed(topic.Name, canonical, err), nil
		}
	}

	page, err := i.extractor.Extract(ctx, canonical)
	if err != nil {
		return domain.Failed(topic.Name, canonical, fmt.Errorf("extract: %w", err)), nil
	}
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = strings.TrimSpace(entry.Title)
	}
	text := strings.TrimSpace(page.Text)
	if title == "" || len([]rune(text)) < MinContentLength {
		return domain.Skipped(topic.Name, canonical, "empty or short article"), nil
	}

	score := topic.Table.Score(title, text)
	if score < scoring.ArchiveThreshold {
		return domain.Skipped(topic.Name, canonical, fmt.Sprintf("low score %d", score)), nil
	}

	now := i.now()
	item := domain.NewsItem{
		ID:        now.Unix(),
		Date:      now.Format(domain.DayLayout),
		Title:     title,
		Summary:   i.summarize(ctx, title, text),
		Content:   text,
		SourceURL: canonical,
		Source:    dedup.SourceLabel(canonical),
		Score:     score,
		Image:     strings.TrimSpace(page.Image),
	}
	name, err := topic.Archive.Archive(item)
	if err != nil {
		return domain.Failed(topic.Name, canonical, err), nil
	}
	seen.Register(canonical)
	return domain.OK(topic.Name, canonical, fmt.Sprintf("archived %s score %d", filepath.Base(name), score)), &item
}

func (i *Ingestor) summarize(ctx context.Context, title, text string) string {
	if i.summarizer != nil {
		summary, err := i.summarizer.Summarize(ctx, title, text)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		if err != nil {
			i.logger.Warn("summary failed, using excerpt", "title", title, "error", err)
		}
	}
	return FallbackSummary(text)
}

// FallbackSummary is the first 200 characters of text followed by "...".
func FallbackSummary(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > fallbackSummary {
		runes = runes[:fallbackSummary]
	}
	return string(runes) + "..."
}

func buildDigestMessage(topic string, items []domain.NewsItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d new article(s)\n\n", topic, len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\nScore: %d\n%s\n\n", it.Title, it.Score, it.SourceURL)
	}
	return b.String()
}
