package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/contentpipe/contentpipe/internal/app"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/store"
)

var version = "dev"

var (
	styleFlag   string
	noCacheFlag bool
	limitFlag   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "contentpipe",
	Short:   "Batch document summarization pipeline",
	Long:    "contentpipe collects documents from feeds and summarizes them through a batched LLM pipeline with deterministic fallbacks.",
	Version: version,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect documents from configured feeds without summarizing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, application *app.App) error {
			return application.RunFetch(ctx)
		})
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Collect, summarize and persist documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, application *app.App) error {
			return application.RunProcess(ctx, styleFlag, !noCacheFlag)
		})
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently processed documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := store.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer database.Close() //nolint:errcheck // close on exit

		docs, err := database.RecentDocuments(cmd.Context(), limitFlag)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			fmt.Printf("[%s] %s (%s)\n  %s\n", doc.Tier, doc.Title, doc.Source, doc.Summary)
		}

		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&styleFlag, "style", "", "Summary style (single_sentence, bullet_points, short_paragraph, detailed)")
	processCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the processing cache")
	recentCmd.Flags().IntVar(&limitFlag, "limit", 20, "Number of documents to show")

	rootCmd.AddCommand(fetchCmd, processCmd, recentCmd)
}

func withApp(parent context.Context, run func(context.Context, *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := store.Open(cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer database.Close() //nolint:errcheck // close on exit

	return run(ctx, app.New(cfg, database, &logger))
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
