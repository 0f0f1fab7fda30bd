package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// FeedSource reads RSS, Atom and JSON feeds.
type FeedSource struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.FeedSource = (*FeedSource)(nil)

// NewFeedSource wires an HTTP client; a nil client gets a default with timeout.
func NewFeedSource(client *http.Client, timeout time.Duration, userAgent string, log *slog.Logger) *FeedSource {
	return &FeedSource{
		client:    newClient(client, timeout),
		userAgent: userAgent,
		logger:    log,
	}
}

// Fetch downloads and parses one feed, returning its entries in feed order.
func (s *FeedSource) Fetch(ctx context.Context, feedURL string) ([]domain.FeedEntry, error) {
	body, err := get(ctx, s.client, feedURL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	entries := make([]domain.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, domain.FeedEntry{
			Title: strings.TrimSpace(item.Title),
			Link:  strings.TrimSpace(item.Link),
		})
	}

	if s.logger != nil {
		s.logger.Debug("feed fetched", "feed", feedURL, "entries", len(entries))
	}
	return entries, nil
}
