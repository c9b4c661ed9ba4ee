// Package app wires configuration, the LLM client, the cache, the collector
// and the store into runnable commands.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/cache"
	"github.com/contentpipe/contentpipe/internal/collect"
	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/llm"
	"github.com/contentpipe/contentpipe/internal/pipeline"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/platform/observability"
	"github.com/contentpipe/contentpipe/internal/store"
)

// App holds the application dependencies.
type App struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	database *store.DB

	client          llm.Client
	processingCache *cache.Cache
}

// New wires the long-lived dependencies once: the LLM client keeps its
// circuit-breaker state and the processing cache keeps its entries across
// pipeline calls. With a database attached the cache is hydrated from the
// previous run.
func New(cfg *config.Config, database *store.DB, logger *zerolog.Logger) *App {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	a := &App{
		cfg:             cfg,
		logger:          logger,
		database:        database,
		client:          llm.New(cfg, logger),
		processingCache: cache.New(cfg.CacheMaxSize, cfg.CacheTTL, logger),
	}

	a.hydrateCache()

	return a
}

// RunProcess fetches documents from the configured feeds, runs the
// processing pipeline and persists the results.
func (a *App) RunProcess(ctx context.Context, styleOverride string, useCache bool) error {
	style, err := a.resolveStyle(styleOverride)
	if err != nil {
		return err
	}

	if a.cfg.MetricsPort > 0 {
		go func() {
			if err := observability.ServeMetrics(ctx, a.cfg.MetricsPort); err != nil {
				a.logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	collector := collect.New(a.cfg, a.logger)

	docs := collector.Fetch(ctx)
	if len(docs) == 0 {
		a.logger.Info().Msg("no documents collected")
		return nil
	}

	report := a.newOrchestrator().Process(ctx, docs, style, useCache)

	for tier, count := range report.TierCounts {
		a.logger.Info().Str("tier", string(tier)).Int("count", count).Msg("summarization tier usage")
	}

	if err := a.database.SaveDocuments(ctx, docs); err != nil {
		return fmt.Errorf("saving processed documents: %w", err)
	}

	a.persistCache(ctx)

	a.logger.Info().Int("documents", len(docs)).Msg("processing run complete")

	return nil
}

// RunFetch collects documents and persists them without summarization,
// useful for inspecting collector output.
func (a *App) RunFetch(ctx context.Context) error {
	collector := collect.New(a.cfg, a.logger)

	docs := collector.Fetch(ctx)
	if len(docs) == 0 {
		a.logger.Info().Msg("no documents collected")
		return nil
	}

	for _, doc := range docs {
		doc.Summary = "(not summarized)"
	}

	if err := a.database.SaveDocuments(ctx, docs); err != nil {
		return fmt.Errorf("saving fetched documents: %w", err)
	}

	a.logger.Info().Int("documents", len(docs)).Msg("fetch complete")

	return nil
}

// ProcessDocuments runs the pipeline over caller-provided documents. It is
// the library entry point used by tests and embedding callers; repeated
// calls share the cache and circuit-breaker state held by the App.
func (a *App) ProcessDocuments(ctx context.Context, docs []*domain.Document, styleOverride string, useCache bool) (*pipeline.Report, error) {
	style, err := a.resolveStyle(styleOverride)
	if err != nil {
		return nil, err
	}

	report := a.newOrchestrator().Process(ctx, docs, style, useCache)

	a.persistCache(ctx)

	return report, nil
}

func (a *App) newOrchestrator() *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(a.client, a.processingCache, a.cfg, a.logger)
}

// hydrateCache seeds the processing cache from persisted entries. Best
// effort: a failing load leaves the cache cold.
func (a *App) hydrateCache() {
	if a.database == nil {
		return
	}

	entries, err := a.database.LoadCacheEntries(context.Background())
	if err != nil {
		a.logger.Warn().Err(err).Msg("loading cache entries failed")
		return
	}

	if loaded := a.processingCache.Import(entries); loaded > 0 {
		a.logger.Info().Int("entries", loaded).Msg("processing cache hydrated")
	}
}

// persistCache writes the fresh cache entries through the store. Best
// effort: persistence failures never fail a pipeline run.
func (a *App) persistCache(ctx context.Context) {
	if a.database == nil {
		return
	}

	if err := a.database.SaveCacheEntries(ctx, a.processingCache.Export()); err != nil {
		a.logger.Warn().Err(err).Msg("persisting cache entries failed")
	}
}

func (a *App) resolveStyle(styleOverride string) (domain.SummaryStyle, error) {
	raw := styleOverride
	if raw == "" {
		raw = a.cfg.SummaryStyle
	}

	style, err := domain.ParseStyle(raw)
	if err != nil {
		return "", fmt.Errorf("resolving summary style: %w", err)
	}

	return style, nil
}
