package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/dedup"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/scoring"
)

func openArchive(t *testing.T, root string) *archive.Archive {
	t.Helper()
	a, err := archive.Open(filepath.Join(root, "json", "news.json"), filepath.Join(root, "news_emissions"), archive.DefaultCap, nil)
	require.NoError(t, err)
	return a
}

func TestIngestor_ArchivesScoredArticles(t *testing.T) {
	root := t.TempDir()
	arch := openArchive(t, root)
	feeds := &fakeFeeds{entries: map[string][]domain.FeedEntry{
		"feed-a": {
			{Title: "EU ETS fines rise", Link: "https://news.example.com/ets-fines"},
			{Title: "Crew change update", Link: "https://news.example.com/crew"},
			{Title: "Port opens", Link: "https://news.example.com/short"},
			{Title: "No link"},
		},
	}}
	extractor := &fakeExtractor{pages: map[string]domain.Extracted{
		"https://news.example.com/ets-fines": {Title: "EU ETS fines rise", Text: etsBody, Image: "https://img.example.com/ets.jpg"},
		"https://news.example.com/crew":      {Title: "Crew change update", Text: strings.Repeat("Crew rotation resumed at the port today. ", 5)},
		"https://news.example.com/short":     {Title: "Port opens", Text: "Too short."},
	}}
	syncer := &recordingSyncer{}
	notifier := &recordingNotifier{}

	ing := NewIngestor(IngestDeps{
		Feeds:      feeds,
		Extractor:  extractor,
		Summarizer: fakeSummarizer{summary: "ETS penalties climb."},
		Syncer:     syncer,
		Notifier:   notifier,
		Now:        fixedNow,
	})

	summary, err := ing.Run(context.Background(), Topic{Name: "emissions", Table: openTable(), Feeds: []string{"feed-a"}, Archive: arch}, dedup.New())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	reopened := openArchive(t, root)
	require.Equal(t, 1, reopened.Len())
	item := reopened.Items()[0]
	assert.Equal(t, "EU ETS fines rise", item.Title)
	assert.Equal(t, 85, item.Score)
	assert.Equal(t, "2025-03-01", item.Date)
	assert.Equal(t, "ETS penalties climb.", item.Summary)
	assert.Equal(t, "news.example.com", item.Source)
	assert.Equal(t, runDay.Unix(), item.ID)
	assert.Equal(t, "https://img.example.com/ets.jpg", item.Image)

	require.Len(t, syncer.commits, 1)
	assert.Equal(t, "Auto-update news: 2025-03-01 09:00", syncer.commits[0].message)
	assert.Equal(t, []string{arch.IndexPath(), arch.Dir()}, syncer.commits[0].paths)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "emissions: 1 new article(s)")
	assert.Contains(t, notifier.messages[0], "Score: 85")
}

func TestIngestor_SkipsSeenAndPrefiltered(t *testing.T) {
	root := t.TempDir()
	arch := openArchive(t, root)
	feeds := &fakeFeeds{entries: map[string][]domain.FeedEntry{
		"feed-a": {
			{Title: "EU-ETS fines rise", Link: "https://www.google.com/url?url=https://news.example.com/ets-fines&rct=j"},
			{Title: "Crew change update", Link: "https://news.example.com/crew"},
		},
	}}
	extractor := &fakeExtractor{pages: map[string]domain.Extracted{}}
	syncer := &recordingSyncer{}

	ing := NewIngestor(IngestDeps{Feeds: feeds, Extractor: extractor, Syncer: syncer, Now: fixedNow})
	seen := dedup.New("https://news.example.com/ets-fines")

	summary, err := ing.Run(context.Background(), Topic{Name: "emissions", Table: scoring.Emissions, Feeds: []string{"feed-a"}, Archive: arch}, seen)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.New)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, extractor.calls)
	assert.Empty(t, syncer.commits)
	_, statErr := os.Stat(arch.IndexPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngestor_SameRunDuplicateAndFailures(t *testing.T) {
	root := t.TempDir()
	arch := openArchive(t, root)
	entry := domain.FeedEntry{Title: "EU ETS fines rise", Link: "https://news.example.com/ets-fines"}
	feeds := &fakeFeeds{
		entries: map[string][]domain.FeedEntry{
			"feed-a": {entry},
			"feed-b": {entry, {Title: "Gone", Link: "https://news.example.com/gone"}},
		},
		errs: map[string]error{"feed-c": errors.New("503")},
	}
	extractor := &fakeExtractor{pages: map[string]domain.Extracted{
		"https://news.example.com/ets-fines": {Title: "EU ETS fines rise", Text: etsBody},
	}}

	ing := NewIngestor(IngestDeps{
		Feeds:      feeds,
		Extractor:  extractor,
		Summarizer: fakeSummarizer{err: errors.New("quota")},
		Now:        fixedNow,
	})
	summary, err := ing.Run(context.Background(), Topic{Name: "emissions", Table: openTable(), Feeds: []string{"feed-a", "feed-b", "feed-c"}, Archive: arch}, dedup.New())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, []string{"https://news.example.com/ets-fines", "https://news.example.com/gone"}, extractor.calls)
	require.Equal(t, 1, arch.Len())
	assert.Equal(t, FallbackSummary(etsBody), arch.Items()[0].Summary)
}

func TestIngestor_AllFeedsFailingIsFatal(t *testing.T) {
	arch := openArchive(t, t.TempDir())
	feeds := &fakeFeeds{errs: map[string]error{
		"feed-a": errors.New("dial tcp: no route to host"),
		"feed-b": errors.New("503"),
	}}
	syncer := &recordingSyncer{}

	ing := NewIngestor(IngestDeps{Feeds: feeds, Extractor: &fakeExtractor{}, Syncer: syncer, Now: fixedNow})
	summary, err := ing.Run(context.Background(), Topic{Name: "emissions", Table: openTable(), Feeds: []string{"feed-a", "feed-b"}, Archive: arch}, dedup.New())

	require.ErrorIs(t, err, ErrFeedsUnreachable)
	assert.Equal(t, 2, summary.Failed)
	assert.Empty(t, syncer.commits)
}

func TestIngestor_Preconditions(t *testing.T) {
	arch := openArchive(t, t.TempDir())
	ing := NewIngestor(IngestDeps{Feeds: &fakeFeeds{}, Extractor: &fakeExtractor{}})

	_, err := ing.Run(context.Background(), Topic{Name: "emissions", Archive: arch}, dedup.New())
	assert.Error(t, err)

	_, err = NewIngestor(IngestDeps{}).Run(context.Background(), Topic{Name: "emissions", Feeds: []string{"x"}, Archive: arch}, dedup.New())
	assert.Error(t, err)
}

func TestHistorySet(t *testing.T) {
	seen := HistorySet(
		[]domain.NewsItem{{SourceURL: "https://a"}, {LegacyURL: "https://legacy"}},
		[]domain.DraftMetadata{{SourceURL: "https://draft"}},
		[]domain.PublishedPost{{SourceURL: "https://published"}},
	)
	for _, link := range []string{"https://a", "https://legacy", "https://draft", "https://published"} {
		assert.True(t, seen.IsDuplicate(link), link)
	}
	assert.False(t, seen.IsDuplicate("https://fresh"))
}

func TestFallbackSummary(t *testing.T) {
	assert.Equal(t, "", FallbackSummary(""))
	assert.Equal(t, "short...", FallbackSummary("short"))
	long := strings.Repeat("é", 250)
	assert.Equal(t, strings.Repeat("é", 200)+"...", FallbackSummary(long))
}
