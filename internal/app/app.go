package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"NewsDesk/internal/archive"
	"NewsDesk/internal/config"
	"NewsDesk/internal/infrastructure/llm"
	"NewsDesk/internal/infrastructure/lock"
	"NewsDesk/internal/infrastructure/parser"
	"NewsDesk/internal/infrastructure/scheduler"
	"NewsDesk/internal/infrastructure/storage"
	"NewsDesk/internal/infrastructure/syncer"
	"NewsDesk/internal/infrastructure/telegram"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/metrics"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/scoring"
	"NewsDesk/internal/usecase"
)

// Options tweak wiring from the command line.
type Options struct {
	// NoSync leaves every change local.
	NoSync bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics
	closers  []func() error
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	topics, err := a.topics()
	if err != nil {
		return nil, err
	}

	feeds := parser.NewFeedSource(nil, cfg.Extractor.Timeout, cfg.Extractor.UserAgent, baseLogger.With("component", "feed"))
	extractor := parser.NewArticleExtractor(nil, cfg.Extractor.Timeout, cfg.Extractor.UserAgent)
	images := parser.NewOGImageFinder(nil, cfg.Extractor.Timeout, cfg.Extractor.UserAgent, baseLogger.With("component", "ogimage"))

	var limiter *rate.Limiter
	if cfg.Extractor.Interval > 0 {
		burst := cfg.Extractor.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(cfg.Extractor.Interval), burst)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.APIBase, tg.BotToken, tg.ChatID)
	}

	var (
		summarizer ports.Summarizer
		generator  ports.Generator
	)
	if client := a.llmClient(); client != nil {
		summarizer, generator = client, client
	}

	var newsSyncer, publishSyncer ports.Syncer
	if !opts.NoSync {
		if newsSyncer, err = a.buildSyncer(ctx, false); err != nil {
			return nil, err
		}
		if publishSyncer, err = a.buildSyncer(ctx, cfg.Sync.PullBeforePublish); err != nil {
			return nil, err
		}
	}

	locker, err := a.locker()
	if err != nil {
		return nil, err
	}

	var journal ports.Journal
	if cfg.Journal.Path != "" {
		j, err := storage.OpenJournal(cfg.Resolve(cfg.Journal.Path))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, j.Close)
		journal = j
	}

	ingestor := usecase.NewIngestor(usecase.IngestDeps{
		Feeds:      feeds,
		Extractor:  extractor,
		Summarizer: summarizer,
		Syncer:     newsSyncer,
		Notifier:   notifier,
		Limiter:    limiter,
		Logger:     baseLogger.With("component", "scrape"),
	})

	var drafter *usecase.Drafter
	if generator != nil {
		drafter = usecase.NewDrafter(usecase.DraftDeps{
			Generator: generator,
			Images:    images,
			Syncer:    newsSyncer,
			Notifier:  notifier,
			Limiter:   limiter,
			Threshold: cfg.Blog.Threshold,
			Logger:    baseLogger.With("component", "draft"),
		})
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Topics: topics,
		Blog: usecase.BlogSettings{
			DraftsManifest:    cfg.Resolve(cfg.Blog.DraftsManifest),
			PublishedManifest: cfg.Resolve(cfg.Blog.PublishedManifest),
			DraftsDir:         cfg.Resolve(cfg.Blog.DraftsDir),
			PostsDir:          cfg.Resolve(cfg.Blog.PostsDir),
			Author:            cfg.Blog.Author,
			Location:          cfg.Schedule.Location(),
		},
		Ingestor:      ingestor,
		Drafter:       drafter,
		PublishSyncer: publishSyncer,
		Notifier:      notifier,
		Locker:        locker,
		Journal:       journal,
		Observer:      a.metrics,
		NewRunID:      uuid.NewString,
		Logger:        baseLogger,
	})
	return a, nil
}

// Pipeline exposes the command runner.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// FlushMetrics writes the metrics textfile when one is configured.
func (a *Application) FlushMetrics() {
	path := a.cfg.Resolve(a.cfg.Metrics.Textfile)
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("metrics not written", "error", err)
	}
}

// Serve runs scrape (chained with draft) and tick on their cron expressions
// until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Schedule.Location())
	sched := usecase.NewScheduler(driver, a.logger.With("component", "scheduler"),
		usecase.Job{
			Name: "scrape",
			Spec: a.cfg.Schedule.Scrape,
			Run: func(ctx context.Context, _ time.Time) error {
				defer a.FlushMetrics()
				_, err := a.pipeline.Scrape(ctx, nil, true)
				return err
			},
		},
		usecase.Job{
			Name: "tick",
			Spec: a.cfg.Schedule.Tick,
			Run: func(ctx context.Context, trigger time.Time) error {
				defer a.FlushMetrics()
				_, err := a.pipeline.Tick(ctx, trigger)
				return err
			},
		},
	)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("serving", "scrape", a.cfg.Schedule.Scrape, "tick", a.cfg.Schedule.Tick)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases the journal and Redis connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) topics() ([]usecase.TopicSettings, error) {
	registry := scoring.NewRegistry()
	topics := make([]usecase.TopicSettings, 0, len(a.cfg.Topics))
	for _, tc := range a.cfg.Topics {
		tableName := tc.Table
		if tableName == "" {
			tableName = tc.Name
		}
		table, err := registry.Resolve(tableName)
		if err != nil {
			return nil, fmt.Errorf("topic %s: %w", tc.Name, err)
		}
		if len(tc.Prefilter) > 0 {
			table.Prefilter = tc.Prefilter
		}
		capacity := tc.IndexCap
		if capacity <= 0 {
			capacity = archive.DefaultCap
		}
		topics = append(topics, usecase.TopicSettings{
			Name:       tc.Name,
			Table:      table,
			Feeds:      tc.Feeds,
			IndexPath:  a.cfg.Resolve(tc.IndexPath),
			ArchiveDir: a.cfg.Resolve(tc.ArchiveDir),
			IndexCap:   capacity,
			Blog:       tc.Blog,
		})
	}
	return topics, nil
}

func (a *Application) llmClient() llm.Client {
	gc := a.cfg.Generator
	key := gc.APIKeyFor()
	if key == "" && !strings.EqualFold(gc.Provider, "service") {
		a.logger.Warn("no llm api key, summaries fall back to article text and drafting is disabled", "provider", gc.Provider)
		return nil
	}
	client, err := llm.New(gc.Provider, llm.Config{
		Endpoint:     gc.Endpoint,
		Model:        gc.Model,
		APIKey:       key,
		SystemPrompt: gc.SystemPrompt,
		Timeout:      gc.Timeout,
	})
	if err != nil {
		a.logger.Warn("llm disabled", "error", err)
		return nil
	}
	return client
}

func (a *Application) buildSyncer(ctx context.Context, pull bool) (ports.Syncer, error) {
	sc := a.cfg.Sync
	var backends syncer.Multi
	for _, name := range sc.Backends {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "git":
			backends = append(backends, syncer.NewGit(syncer.GitOptions{
				Dir:        a.cfg.Root,
				SSHCommand: sc.SSHCommand,
				Pull:       pull,
				NoPush:     sc.NoPush,
				Logger:     a.logger.With("component", "git"),
			}))
		case "s3":
			mirror, err := syncer.NewS3(ctx, syncer.S3Options{
				Root:         a.cfg.Root,
				Bucket:       sc.S3.Bucket,
				Prefix:       sc.S3.Prefix,
				Region:       sc.S3.Region,
				Profile:      sc.S3.Profile,
				Endpoint:     sc.S3.Endpoint,
				UsePathStyle: sc.S3.UsePathStyle,
				Logger:       a.logger.With("component", "s3"),
			})
			if err != nil {
				return nil, err
			}
			backends = append(backends, mirror)
		case "", "none":
		default:
			return nil, fmt.Errorf("unknown sync backend %q", name)
		}
	}

	switch len(backends) {
	case 0:
		return nil, nil
	case 1:
		return a.metrics.WrapSyncer(backends[0]), nil
	default:
		return a.metrics.WrapSyncer(backends), nil
	}
}

func (a *Application) locker() (ports.Locker, error) {
	lc := a.cfg.Lock
	switch strings.ToLower(lc.Backend) {
	case "", "file":
		return lock.NewFile(a.cfg.Resolve(lc.Path)), nil
	case "redis":
		if lc.RedisAddr == "" {
			return nil, errors.New("redis lock needs an address")
		}
		client := redis.NewClient(&redis.Options{Addr: lc.RedisAddr})
		a.closers = append(a.closers, client.Close)
		return lock.NewRedis(client, lc.Key, lc.TTL), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", lc.Backend)
	}
}
