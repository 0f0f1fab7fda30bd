package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"NewsDesk/internal/app"
	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/drafts"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/publish"
	"NewsDesk/internal/usecase"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func newApp() *cli.App {
	topicFlag := &cli.StringSliceFlag{
		Name:    "topic",
		Aliases: []string{"t"},
		Usage:   "Topic to run (repeatable; default: all)",
	}

	return &cli.App{
		Name:  "newsdesk",
		Usage: "Maritime emissions news desk: scrape, draft and publish",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"NEWSDESK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Site root holding json/, news_*/ and blog/",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "no-sync",
				Usage: "Keep every change local",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "Ingest feeds into the rolling index and archive",
				Flags: []cli.Flag{
					topicFlag,
					&cli.BoolFlag{
						Name:  "draft",
						Usage: "Create drafts from the archive afterwards",
					},
				},
				Action: scrape,
			},
			{
				Name:   "draft",
				Usage:  "Create blog drafts from high-scoring archived articles",
				Flags:  []cli.Flag{topicFlag},
				Action: draft,
			},
			{
				Name:  "tick",
				Usage: "Publish every draft whose scheduled time has passed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "now",
						Usage: `Evaluate at this time ("YYYY-MM-DD HH:MM")`,
					},
				},
				Action: tick,
			},
			{
				Name:      "schedule",
				Usage:     "Set or clear the publication time of a draft",
				ArgsUsage: `<slug> ["YYYY-MM-DD HH:MM"]`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove the schedule",
					},
				},
				Action: schedule,
			},
			{
				Name:      "publish",
				Usage:     "Publish a draft now",
				ArgsUsage: "<slug>",
				Action:    publishNow,
			},
			{
				Name:   "drafts",
				Usage:  "List drafts",
				Action: listDrafts,
			},
			{
				Name:  "history",
				Usage: "Show recent run outcomes",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   20,
						Usage:   "Maximum number of entries to return",
					},
				},
				Action: history,
			},
			{
				Name:   "serve",
				Usage:  "Run scrape and tick on their cron expressions",
				Action: serve,
			},
		},
	}
}

// withApp loads configuration, applies global flags and runs fn against a
// wired application.
func withApp(c *cli.Context, fn func(a *app.Application) error) error {
	cfg := config.Load(c.String("config"))
	if v := c.String("root"); v != "" {
		cfg.Root = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(c.Context, cfg, logger, app.Options{NoSync: c.Bool("no-sync")})
	if err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}
	defer func() {
		application.FlushMetrics()
		if err := application.Close(); err != nil {
			logger.Warn("close", "error", err)
		}
	}()
	return fn(application)
}

func scrape(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		summary, err := a.Pipeline().Scrape(c.Context, c.StringSlice("topic"), c.Bool("draft"))
		return report(summary, err)
	})
}

func draft(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		summary, err := a.Pipeline().Draft(c.Context, c.StringSlice("topic"))
		return report(summary, err)
	})
}

func tick(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		now := time.Now()
		if v := c.String("now"); v != "" {
			at, err := time.ParseInLocation(domain.MinuteLayout, v, a.Pipeline().Location())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Invalid --now %q: want YYYY-MM-DD HH:MM", v), ExitUsageError)
			}
			now = at
		}
		summary, err := a.Pipeline().Tick(c.Context, now)
		return report(summary, err)
	})
}

func schedule(c *cli.Context) error {
	slug := c.Args().First()
	if slug == "" {
		return cli.Exit(`Usage: newsdesk schedule <slug> "YYYY-MM-DD HH:MM" | --clear <slug>`, ExitUsageError)
	}
	if !c.Bool("clear") && c.NArg() < 2 {
		return cli.Exit("Missing publication time (or pass --clear)", ExitUsageError)
	}

	return withApp(c, func(a *app.Application) error {
		var at *time.Time
		if !c.Bool("clear") {
			parsed, err := time.ParseInLocation(domain.MinuteLayout, c.Args().Get(1), a.Pipeline().Location())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Invalid time %q: want YYYY-MM-DD HH:MM", c.Args().Get(1)), ExitUsageError)
			}
			at = &parsed
		}
		meta, err := a.Pipeline().Schedule(c.Context, slug, at)
		if err != nil {
			return exitFor(err)
		}
		return outputJSON(meta)
	})
}

func publishNow(c *cli.Context) error {
	slug := c.Args().First()
	if slug == "" {
		return cli.Exit("Usage: newsdesk publish <slug>", ExitUsageError)
	}
	return withApp(c, func(a *app.Application) error {
		summary, err := a.Pipeline().Publish(c.Context, slug)
		return report(summary, err)
	})
}

func listDrafts(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		posts, err := a.Pipeline().Drafts()
		if err != nil {
			return exitFor(err)
		}
		if posts == nil {
			posts = []domain.DraftMetadata{}
		}
		return outputJSON(posts)
	})
}

func history(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		entries, err := a.Pipeline().History(c.Context, c.Int("limit"))
		if err != nil {
			return exitFor(err)
		}
		if entries == nil {
			entries = []domain.JournalEntry{}
		}
		return outputJSON(entries)
	})
}

func serve(c *cli.Context) error {
	return withApp(c, func(a *app.Application) error {
		if err := a.Serve(c.Context); err != nil {
			return exitFor(err)
		}
		return nil
	})
}

// report prints the summary and maps a fatal error to an exit code.
func report(summary domain.Summary, err error) error {
	if outErr := outputJSON(summary); outErr != nil {
		return outErr
	}
	if err != nil {
		return exitFor(err)
	}
	return nil
}

func exitFor(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownTopic), errors.Is(err, usecase.ErrNoTopics):
		return cli.Exit(err.Error(), ExitUsageError)
	case errors.Is(err, drafts.ErrNotFound), errors.Is(err, publish.ErrNoContent), errors.Is(err, usecase.ErrNoArchive):
		return cli.Exit(err.Error(), ExitDataError)
	default:
		return cli.Exit(err.Error(), ExitGeneralError)
	}
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
