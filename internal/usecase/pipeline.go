package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/drafts"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/publish"
	"NewsDesk/internal/scoring"
)

var (
	// ErrUnknownTopic is returned when a command names a topic that is not configured.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrNoTopics is returned when nothing is left to run.
	ErrNoTopics = errors.New("no topics configured")
	// ErrNoArchive is returned by draft runs when a topic's archive directory is absent.
	ErrNoArchive = errors.New("archive directory missing")
)

// TopicSettings locates one topic's feeds, index and archive.
type TopicSettings struct {
	Name       string
	Table      scoring.Table
	Feeds      []string
	IndexPath  string
	ArchiveDir string
	IndexCap   int
	// Blog marks topics whose archive feeds the drafts area.
	Blog bool
}

// BlogSettings locates the drafts and published areas.
type BlogSettings struct {
	DraftsManifest    string
	PublishedManifest string
	DraftsDir         string
	PostsDir          string
	Author            string
	Location          *time.Location
}

// PipelineDeps wires all driven adapters into the run orchestration. Only
// Ingestor (for scrape) and Drafter (for draft) are required.
type PipelineDeps struct {
	Topics        []TopicSettings
	Blog          BlogSettings
	Ingestor      *Ingestor
	Drafter       *Drafter
	PublishSyncer ports.Syncer
	Notifier      ports.Notifier
	Locker        ports.Locker
	Journal       ports.Journal
	Observer      ports.Observer
	NewRunID      func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// Pipeline runs one command end to end: take the run lock, load state from
// disk, run the use case, then journal and observe the outcomes.
type Pipeline struct {
	topics        []TopicSettings
	blog          BlogSettings
	ingestor      *Ingestor
	drafter       *Drafter
	publishSyncer ports.Syncer
	notifier      ports.Notifier
	locker        ports.Locker
	journal       ports.Journal
	observer      ports.Observer
	newRunID      func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = func() string { return fmt.Sprintf("run-%d", deps.Now().UnixNano()) }
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Blog.Location == nil {
		deps.Blog.Location = time.Local
	}
	return &Pipeline{
		topics:        deps.Topics,
		blog:          deps.Blog,
		ingestor:      deps.Ingestor,
		drafter:       deps.Drafter,
		publishSyncer: deps.PublishSyncer,
		notifier:      deps.Notifier,
		locker:        deps.Locker,
		journal:       deps.Journal,
		observer:      deps.Observer,
		newRunID:      deps.NewRunID,
		now:           deps.Now,
		logger:        deps.Logger,
	}
}

// Location is the timezone of scheduled and created stamps.
func (p *Pipeline) Location() *time.Location {
	return p.blog.Location
}

// Scrape ingests the named topics (all when names is empty). With chainDraft
// set, blog topics go on to a draft run inside the same lock.
func (p *Pipeline) Scrape(ctx context.Context, names []string, chainDraft bool) (domain.Summary, error) {
	total := domain.Summary{Command: "scrape"}
	if p.ingestor == nil {
		return total, errors.New("ingestor not configured")
	}
	topics, err := p.selectTopics(names, false)
	if err != nil {
		return total, err
	}

	err = p.locked(ctx, &total, func(runID string) error {
		dm, pm, err := p.openManifests()
		if err != nil {
			return err
		}

		for _, t := range topics {
			arch, err := archive.Open(t.IndexPath, t.ArchiveDir, t.IndexCap, p.logger.With("topic", t.Name))
			if err != nil {
				return err
			}
			seen := HistorySet(arch.Items(), dm.Posts(), pm.Posts())

			s, err := p.ingestor.Run(ctx, Topic{Name: t.Name, Table: t.Table, Feeds: t.Feeds, Archive: arch}, seen)
			p.finish(ctx, runID, &s)
			total.Merge(s)
			if p.observer != nil {
				p.observer.IndexSize(t.Name, arch.Len())
			}
			if err != nil {
				return fmt.Errorf("scrape %s: %w", t.Name, err)
			}

			if chainDraft && t.Blog && p.drafter != nil {
				ds, err := p.drafter.Run(ctx, t.Name, t.ArchiveDir, dm)
				p.finish(ctx, runID, &ds)
				total.Merge(ds)
				if err != nil {
					return fmt.Errorf("draft %s: %w", t.Name, err)
				}
			}
		}
		return nil
	})
	return total, err
}

// Draft creates drafts from the archives of the named blog topics (every blog
// topic when names is empty).
func (p *Pipeline) Draft(ctx context.Context, names []string) (domain.Summary, error) {
	total := domain.Summary{Command: "draft"}
	if p.drafter == nil {
		return total, errors.New("drafter not configured")
	}
	topics, err := p.selectTopics(names, true)
	if err != nil {
		return total, err
	}
	for _, t := range topics {
		if info, err := os.Stat(t.ArchiveDir); err != nil || !info.IsDir() {
			return total, fmt.Errorf("%w: %s", ErrNoArchive, t.ArchiveDir)
		}
	}

	err = p.locked(ctx, &total, func(runID string) error {
		dm, _, err := p.openManifests()
		if err != nil {
			return err
		}
		for _, t := range topics {
			s, err := p.drafter.Run(ctx, t.Name, t.ArchiveDir, dm)
			p.finish(ctx, runID, &s)
			total.Merge(s)
			if err != nil {
				return fmt.Errorf("draft %s: %w", t.Name, err)
			}
		}
		return nil
	})
	return total, err
}

// Tick publishes every draft due at now.
func (p *Pipeline) Tick(ctx context.Context, now time.Time) (domain.Summary, error) {
	total := domain.Summary{Command: "tick"}
	err := p.locked(ctx, &total, func(runID string) error {
		publishing, err := p.openPublishing()
		if err != nil {
			return err
		}
		s, err := publishing.Tick(ctx, now.In(p.blog.Location))
		p.finish(ctx, runID, &s)
		total.Merge(s)
		return err
	})
	return total, err
}

// Publish publishes one draft regardless of its schedule.
func (p *Pipeline) Publish(ctx context.Context, slug string) (domain.Summary, error) {
	total := domain.Summary{Command: "publish"}
	err := p.locked(ctx, &total, func(runID string) error {
		publishing, err := p.openPublishing()
		if err != nil {
			return err
		}
		s, err := publishing.Publish(ctx, slug)
		p.finish(ctx, runID, &s)
		total.Merge(s)
		return err
	})
	return total, err
}

// Schedule sets (or with a nil at, clears) the publication time of a draft
// and syncs the drafts manifest.
func (p *Pipeline) Schedule(ctx context.Context, slug string, at *time.Time) (domain.DraftMetadata, error) {
	var meta domain.DraftMetadata
	summary := domain.Summary{Command: "schedule"}
	err := p.locked(ctx, &summary, func(runID string) error {
		dm, _, err := p.openManifests()
		if err != nil {
			return err
		}
		meta, err = dm.Schedule(slug, at)
		if err != nil {
			summary.Add(domain.Failed("", slug, err))
			p.finish(ctx, runID, &summary)
			return err
		}

		reason := "unscheduled"
		message := "Unschedule post: " + slug
		if meta.Scheduled != nil {
			reason = "scheduled for " + *meta.Scheduled
			message = fmt.Sprintf("Schedule post: %s at %s", slug, *meta.Scheduled)
		}
		summary.Add(domain.OK("", slug, reason))
		p.finish(ctx, runID, &summary)
		commit(ctx, p.publishSyncer, p.logger, []string{dm.Path()}, message)
		return nil
	})
	return meta, err
}

// Drafts lists the drafts manifest.
func (p *Pipeline) Drafts() ([]domain.DraftMetadata, error) {
	dm, _, err := p.openManifests()
	if err != nil {
		return nil, err
	}
	return dm.Posts(), nil
}

// History returns the latest journal entries.
func (p *Pipeline) History(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if p.journal == nil {
		return nil, errors.New("journal not configured")
	}
	return p.journal.Recent(ctx, limit)
}

func (p *Pipeline) selectTopics(names []string, blogOnly bool) ([]TopicSettings, error) {
	var selected []TopicSettings
	if len(names) == 0 {
		for _, t := range p.topics {
			if !blogOnly || t.Blog {
				selected = append(selected, t)
			}
		}
	} else {
		for _, name := range names {
			t, ok := p.topic(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, name)
			}
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoTopics
	}
	return selected, nil
}

func (p *Pipeline) topic(name string) (TopicSettings, bool) {
	for _, t := range p.topics {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return TopicSettings{}, false
}

func (p *Pipeline) openManifests() (*drafts.Manifest, *publish.Manifest, error) {
	pm, err := publish.OpenManifest(p.blog.PublishedManifest, p.logger)
	if err != nil {
		return nil, nil, err
	}
	dm, err := drafts.Open(drafts.Options{
		ManifestPath: p.blog.DraftsManifest,
		Dir:          p.blog.DraftsDir,
		Author:       p.blog.Author,
		Location:     p.blog.Location,
		Now:          p.now,
		Logger:       p.logger.With("component", "drafts"),
	}, pm.Posts())
	if err != nil {
		return nil, nil, err
	}
	return dm, pm, nil
}

func (p *Pipeline) openPublishing() (*Publishing, error) {
	dm, pm, err := p.openManifests()
	if err != nil {
		return nil, err
	}
	publisher := publish.New(dm, pm, publish.Options{
		PostsDir: p.blog.PostsDir,
		Author:   p.blog.Author,
		Location: p.blog.Location,
		Logger:   p.logger.With("component", "publish"),
	})
	return NewPublishing(PublishDeps{
		Publisher: publisher,
		Syncer:    p.publishSyncer,
		Notifier:  p.notifier,
		Logger:    p.logger.With("component", "publish"),
	}), nil
}

// locked runs fn under the run lock with a fresh run id stamped on summary.
func (p *Pipeline) locked(ctx context.Context, summary *domain.Summary, fn func(runID string) error) error {
	runID := p.newRunID()
	summary.RunID = runID

	if p.locker != nil {
		release, err := p.locker.Acquire(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(); err != nil {
				p.logger.Warn("release run lock", "error", err)
			}
		}()
	}

	p.logger.Info("run started", "command", summary.Command, "run_id", runID)
	err := fn(runID)
	p.logger.Info("run finished", "command", summary.Command, "run_id", runID,
		"new", summary.New, "drafted", summary.Drafted, "published", summary.Published,
		"skipped", summary.Skipped, "failed", summary.Failed)
	return err
}

// finish journals and observes one sub-run. Journal failures are logged only.
func (p *Pipeline) finish(ctx context.Context, runID string, s *domain.Summary) {
	s.RunID = runID
	at := p.now()
	if p.journal != nil {
		for _, o := range s.Outcomes {
			if err := p.journal.Record(ctx, domain.NewJournalEntry(runID, s.Command, o, at)); err != nil {
				p.logger.Warn("journal write failed", "error", err)
				break
			}
		}
	}
	if p.observer != nil {
		p.observer.Observe(*s, at.Unix())
	}
}
