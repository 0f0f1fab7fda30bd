package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Maritime</title>
    <item>
      <title> EU ETS fines rise </title>
      <link>https://www.google.com/url?rct=j&amp;url=https://splash247.com/ets-fines</link>
      <pubDate>Wed, 01 Jan 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Hydrogen ferry launched</title>
      <link>https://example.com/ferry</link>
    </item>
  </channel>
</rss>`

const samplePage = `<!doctype html>
<html>
<head>
  <title>EU ETS fines rise</title>
  <meta property="og:image" content="https://cdn.example.com/ets.jpg">
</head>
<body>
  <article>
    <h1>EU ETS fines rise</h1>
    <p>The EU ETS now covers shipping emissions. Carriers report CO2 under MRV and IMO rules, and every fleet pays for carbon.</p>
    <p>Regulators in Brussels said enforcement will tighten through the year as surrender obligations step up for large vessels.</p>
    <p>Operators that miss the deadline face penalties per tonne of unreported emissions on top of the allowances owed.</p>
    <p>Shipowners have spent the past months building compliance desks, buying allowances forward and renegotiating charter clauses so that the cost of carbon follows the fuel.</p>
    <p>Analysts expect the price signal to favour newer tonnage with lower carbon intensity, while older vessels may be laid up earlier than planned.</p>
  </article>
</body>
</html>`

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request without user agent")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedSourceFetch(t *testing.T) {
	t.Parallel()

	server := serve(t, sampleFeed, http.StatusOK)
	src := NewFeedSource(server.Client(), time.Second, "", nil)

	entries, err := src.Fetch(context.Background(), server.URL+"/feed")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "EU ETS fines rise" {
		t.Fatalf("unexpected title: %q", entries[0].Title)
	}
	if !strings.Contains(entries[0].Link, "url=https://splash247.com/ets-fines") {
		t.Fatalf("unexpected link: %s", entries[0].Link)
	}
	if entries[1].Link != "https://example.com/ferry" {
		t.Fatalf("unexpected link: %s", entries[1].Link)
	}
}

func TestFeedSourceFetchStatusError(t *testing.T) {
	t.Parallel()

	server := serve(t, "gone", http.StatusNotFound)
	src := NewFeedSource(server.Client(), time.Second, "", nil)

	if _, err := src.Fetch(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error for 404 feed")
	}
}

func TestArticleExtractorExtract(t *testing.T) {
	t.Parallel()

	server := serve(t, samplePage, http.StatusOK)
	ex := NewArticleExtractor(server.Client(), time.Second, "test-agent")

	got, err := ex.Extract(context.Background(), server.URL+"/ets")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(got.Title, "EU ETS fines rise") {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if !strings.Contains(got.Text, "Carriers report CO2 under MRV") {
		t.Fatalf("body text missing, got %q", got.Text)
	}
	if got.Image != "https://cdn.example.com/ets.jpg" {
		t.Fatalf("unexpected image: %q", got.Image)
	}
}

func TestArticleExtractorServerError(t *testing.T) {
	t.Parallel()

	server := serve(t, "boom", http.StatusInternalServerError)
	ex := NewArticleExtractor(server.Client(), time.Second, "")

	if _, err := ex.Extract(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error for 500 page")
	}
}

func TestOGImageFinder(t *testing.T) {
	t.Parallel()

	server := serve(t, samplePage, http.StatusOK)
	finder := NewOGImageFinder(server.Client(), time.Second, "", nil)

	if got := finder.FeaturedImage(context.Background(), server.URL); got != "https://cdn.example.com/ets.jpg" {
		t.Fatalf("unexpected image: %q", got)
	}

	broken := serve(t, "", http.StatusBadGateway)
	if got := NewOGImageFinder(broken.Client(), time.Second, "", nil).FeaturedImage(context.Background(), broken.URL); got != "" {
		t.Fatalf("expected empty image on failure, got %q", got)
	}
}

func TestImageFromDocument(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
		want string
	}{
		{"og image", `<meta property="og:image" content="https://a/1.png">`, "https://a/1.png"},
		{"relative og skipped for twitter", `<meta property="og:image" content="/1.png"><meta name="twitter:image" content="https://a/2.png">`, "https://a/2.png"},
		{"none", `<meta name="description" content="x">`, ""},
	}
	for _, c := range cases {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head>" + c.html + "</head></html>"))
		if err != nil {
			t.Fatalf("%s: new document: %v", c.name, err)
		}
		if got := imageFromDocument(doc); got != c.want {
			t.Fatalf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}
