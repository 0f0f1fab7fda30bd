package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/domain"
)

type pipelineFixture struct {
	root          string
	pipeline      *Pipeline
	newsSyncer    *recordingSyncer
	publishSyncer *recordingSyncer
	journal       *memoryJournal
	locker        *fakeLocker
	observer      *fakeObserver
	generator     *fakeGenerator
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	root := t.TempDir()
	f := &pipelineFixture{
		root:          root,
		newsSyncer:    &recordingSyncer{},
		publishSyncer: &recordingSyncer{},
		journal:       &memoryJournal{},
		locker:        &fakeLocker{},
		observer:      &fakeObserver{},
		generator:     &fakeGenerator{body: "## EU ETS\n\nFines are rising."},
	}

	feeds := &fakeFeeds{entries: map[string][]domain.FeedEntry{
		"feed-a": {{Title: "EU ETS fines rise", Link: "https://news.example.com/ets-fines"}},
	}}
	extractor := &fakeExtractor{pages: map[string]domain.Extracted{
		"https://news.example.com/ets-fines": {Title: "EU ETS fines rise", Text: etsBody},
	}}

	runs := 0
	f.pipeline = NewPipeline(PipelineDeps{
		Topics: []TopicSettings{{
			Name:       "emissions",
			Table:      openTable(),
			Feeds:      []string{"feed-a"},
			IndexPath:  filepath.Join(root, "json", "news.json"),
			ArchiveDir: filepath.Join(root, "news_emissions"),
			IndexCap:   archive.DefaultCap,
			Blog:       true,
		}},
		Blog: BlogSettings{
			DraftsManifest:    filepath.Join(root, "json", "blog_drafts.json"),
			PublishedManifest: filepath.Join(root, "json", "blog.json"),
			DraftsDir:         filepath.Join(root, "blog", "posts", "drafts"),
			PostsDir:          filepath.Join(root, "blog", "posts"),
			Location:          time.UTC,
		},
		Ingestor:      NewIngestor(IngestDeps{Feeds: feeds, Extractor: extractor, Syncer: f.newsSyncer, Now: fixedNow}),
		Drafter:       NewDrafter(DraftDeps{Generator: f.generator, Syncer: f.newsSyncer}),
		PublishSyncer: f.publishSyncer,
		Locker:        f.locker,
		Journal:       f.journal,
		Observer:      f.observer,
		NewRunID: func() string {
			runs++
			return "run-" + string(rune('0'+runs))
		},
		Now: fixedNow,
	})
	return f
}

func TestPipeline_ScrapeThenDraft(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	summary, err := f.pipeline.Scrape(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.Drafted)

	arch, err := archive.Open(filepath.Join(f.root, "json", "news.json"), filepath.Join(f.root, "news_emissions"), archive.DefaultCap, nil)
	require.NoError(t, err)
	require.Equal(t, 1, arch.Len())
	assert.Equal(t, "https://news.example.com/ets-fines", arch.Items()[0].SourceURL)

	posts, err := f.pipeline.Drafts()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "eu-ets-fines-rise", posts[0].Slug)
	assert.Nil(t, posts[0].Scheduled)
	_, err = os.Stat(filepath.Join(f.root, "blog", "posts", "drafts", "eu-ets-fines-rise.md"))
	assert.NoError(t, err)

	assert.Equal(t, []string{"Auto-update news: 2025-03-01 09:00", "New blog draft: eu-ets-fines-rise"}, f.newsSyncer.messages())
	assert.Equal(t, 1, f.locker.acquired)
	assert.Equal(t, 1, f.locker.released)
	assert.Equal(t, 1, f.observer.sizes["emissions"])
	require.Len(t, f.journal.entries, 2)
	assert.Equal(t, "scrape", f.journal.entries[0].Command)
	assert.Equal(t, "draft", f.journal.entries[1].Command)
	assert.Equal(t, "run-1", f.journal.entries[1].RunID)

	again, err := f.pipeline.Scrape(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 0, again.New)
	assert.Equal(t, 0, again.Drafted)
	assert.Len(t, f.generator.calls, 1)

	history, err := f.pipeline.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-2", history[0].RunID)
}

func TestPipeline_ScheduleTickPublish(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Scrape(ctx, []string{"Emissions"}, true)
	require.NoError(t, err)

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	meta, err := f.pipeline.Schedule(ctx, "eu-ets-fines-rise", &at)
	require.NoError(t, err)
	require.NotNil(t, meta.Scheduled)
	assert.Equal(t, "2025-01-01 09:00", *meta.Scheduled)

	early, err := f.pipeline.Tick(ctx, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, early.Published)

	summary, err := f.pipeline.Tick(ctx, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)

	posts, err := f.pipeline.Drafts()
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, err = os.Stat(filepath.Join(f.root, "blog", "posts", "eu-ets-fines-rise.md"))
	assert.NoError(t, err)

	assert.Equal(t, []string{
		"Schedule post: eu-ets-fines-rise at 2025-01-01 09:00",
		"Auto-publish scheduled post: eu-ets-fines-rise",
	}, f.publishSyncer.messages())

	_, err = f.pipeline.Publish(ctx, "eu-ets-fines-rise")
	assert.Error(t, err)
}

func TestPipeline_ClearSchedule(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	_, err := f.pipeline.Scrape(ctx, nil, true)
	require.NoError(t, err)

	meta, err := f.pipeline.Schedule(ctx, "eu-ets-fines-rise", nil)
	require.NoError(t, err)
	assert.Nil(t, meta.Scheduled)
	assert.Equal(t, []string{"Unschedule post: eu-ets-fines-rise"}, f.publishSyncer.messages())

	_, err = f.pipeline.Schedule(ctx, "unknown", nil)
	assert.Error(t, err)
}

func TestPipeline_Errors(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Scrape(ctx, []string{"shipping"}, false)
	assert.ErrorIs(t, err, ErrUnknownTopic)

	_, err = f.pipeline.Draft(ctx, nil)
	assert.ErrorIs(t, err, ErrNoArchive)

	busy := errors.New("another run holds the lock")
	f.locker.busy = busy
	_, err = f.pipeline.Tick(ctx, runDay)
	assert.ErrorIs(t, err, busy)
	assert.Empty(t, f.publishSyncer.commits)

	_, err = NewPipeline(PipelineDeps{}).History(ctx, 5)
	assert.Error(t, err)

	_, err = NewPipeline(PipelineDeps{Ingestor: f.pipeline.ingestor}).Scrape(ctx, nil, false)
	assert.ErrorIs(t, err, ErrNoTopics)
}

func TestPipeline_DraftOnly(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Scrape(ctx, nil, false)
	require.NoError(t, err)
	posts, err := f.pipeline.Drafts()
	require.NoError(t, err)
	assert.Empty(t, posts)

	summary, err := f.pipeline.Draft(ctx, []string{"emissions"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Drafted)
	assert.Equal(t, "draft", summary.Command)
}
