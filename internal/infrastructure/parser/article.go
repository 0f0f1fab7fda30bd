package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// ArticleExtractor pulls the readable text out of an article page.
type ArticleExtractor struct {
	client    *http.Client
	userAgent string
}

var _ ports.Extractor = (*ArticleExtractor)(nil)

// NewArticleExtractor wires an HTTP client; a nil client gets a default with timeout.
func NewArticleExtractor(client *http.Client, timeout time.Duration, userAgent string) *ArticleExtractor {
	return &ArticleExtractor{client: newClient(client, timeout), userAgent: userAgent}
}

// Extract downloads pageURL and runs readability over it.
func (e *ArticleExtractor) Extract(ctx context.Context, pageURL string) (domain.Extracted, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.Extracted{}, fmt.Errorf("invalid article url %s: %w", pageURL, err)
	}

	body, err := get(ctx, e.client, pageURL, e.userAgent)
	if err != nil {
		return domain.Extracted{}, err
	}
	defer body.Close()

	article, err := readability.FromReader(body, parsed)
	if err != nil {
		return domain.Extracted{}, fmt.Errorf("readability %s: %w", pageURL, err)
	}

	return domain.Extracted{
		Title: strings.TrimSpace(article.Title),
		Text:  strings.TrimSpace(article.TextContent),
		Image: article.Image,
	}, nil
}
