package parser

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDesk/internal/ports"
)

var imageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
}

// OGImageFinder looks up the featured image a page advertises in its meta tags.
type OGImageFinder struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.ImageFinder = (*OGImageFinder)(nil)

// NewOGImageFinder wires an HTTP client; a nil client gets a default with timeout.
func NewOGImageFinder(client *http.Client, timeout time.Duration, userAgent string, log *slog.Logger) *OGImageFinder {
	return &OGImageFinder{client: newClient(client, timeout), userAgent: userAgent, logger: log}
}

// FeaturedImage returns the page's og:image URL, or "" on any failure.
func (f *OGImageFinder) FeaturedImage(ctx context.Context, pageURL string) string {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("featured image lookup failed", "url", pageURL, "error", err)
		}
		return ""
	}
	return imageFromDocument(doc)
}

func (f *OGImageFinder) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := get(ctx, f.client, pageURL, f.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return goquery.NewDocumentFromReader(body)
}

func imageFromDocument(doc *goquery.Document) string {
	for _, sel := range imageSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			content := strings.TrimSpace(s.AttrOr("content", ""))
			if strings.HasPrefix(content, "http://") || strings.HasPrefix(content, "https://") {
				found = content
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}
