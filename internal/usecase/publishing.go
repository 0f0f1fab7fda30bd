package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/publish"
)

// PublishDeps wires the collaborators of tick and manual publish runs.
type PublishDeps struct {
	Publisher *publish.Publisher
	Syncer    ports.Syncer
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// Publishing runs the publication state machine and syncs each publication.
type Publishing struct {
	publisher *publish.Publisher
	syncer    ports.Syncer
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewPublishing constructs the publish use case.
func NewPublishing(deps PublishDeps) *Publishing {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Publishing{
		publisher: deps.Publisher,
		syncer:    deps.Syncer,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}
}

// Tick publishes every due draft. Zero publications is a normal outcome.
func (p *Publishing) Tick(ctx context.Context, now time.Time) (domain.Summary, error) {
	summary := domain.Summary{Command: "tick"}
	outcomes, err := p.publisher.Tick(now)
	if err != nil {
		return summary, fmt.Errorf("tick: %w", err)
	}

	for _, o := range outcomes {
		logOutcome(p.logger, o)
		summary.Add(o)
		if o.Kind == domain.OutcomeOK {
			p.afterPublish(ctx, o.Key, "Auto-publish scheduled post: ")
		}
	}
	if summary.Published == 0 {
		p.logger.Info("no scheduled posts due", "now", now.Format(domain.MinuteLayout))
	}
	return summary, nil
}

// Publish publishes one draft immediately.
func (p *Publishing) Publish(ctx context.Context, slug string) (domain.Summary, error) {
	summary := domain.Summary{Command: "publish"}
	if err := p.publisher.PublishNow(slug); err != nil {
		summary.Add(domain.Failed("", slug, err))
		return summary, err
	}
	summary.Add(domain.OK("", slug, "published"))
	p.afterPublish(ctx, slug, "Publish post: ")
	return summary, nil
}

func (p *Publishing) afterPublish(ctx context.Context, slug, prefix string) {
	commit(ctx, p.syncer, p.logger, p.publisher.ChangedPaths(slug), prefix+slug)
	notify(ctx, p.notifier, p.logger, "Published: "+slug)
}
