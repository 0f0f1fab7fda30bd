package ports

import (
	"context"
	"time"

	"NewsDesk/internal/domain"
)

// FeedSource lists the entries of a single feed.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.FeedEntry, error)
}

// Extractor downloads an article page and returns its readable text.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.Extracted, error)
}

// Summarizer writes a short summary of an article.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
}

// Generator writes a blog post body (markdown) from an article.
type Generator interface {
	Generate(ctx context.Context, title, body, source string) (string, error)
}

// ImageFinder resolves the featured image of a page; "" when there is none.
type ImageFinder interface {
	FeaturedImage(ctx context.Context, url string) string
}

// Syncer persists changed files to durable storage.
type Syncer interface {
	Commit(ctx context.Context, paths []string, message string) error
}

// Notifier announces drafts and publications to a human channel (Telegram, etc.).
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Journal keeps an audit trail of run outcomes.
type Journal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}

// Locker serialises mutating runs.
type Locker interface {
	Acquire(ctx context.Context) (release func() error, err error)
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Add(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Observer receives finished run summaries and store sizes (metrics).
type Observer interface {
	Observe(summary domain.Summary, finishedUnix int64)
	IndexSize(topic string, size int)
}
