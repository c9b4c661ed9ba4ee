// Package pipeline implements the content processing pipeline: feature
// derivation, the batch → concurrent → extractive summarization chain, and
// the content-hash cache in front of it. The external contract is that every
// input document comes back with a non-empty summary; the worst case for any
// single document is an extractive summary of its own title and body.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/cache"
	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/errors"
	"github.com/contentpipe/contentpipe/internal/core/llm"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/platform/observability"
)

// Orchestrator owns the fallback chain explicitly: batch first, per-item
// concurrent calls for whatever the batch could not cover, extractive as the
// terminal layer.
type Orchestrator struct {
	cache      *cache.Cache
	batch      *BatchProcessor
	concurrent *ConcurrentSummarizer
	extractive *ExtractiveSummarizer
	logger     *zerolog.Logger
}

// Report accumulates per-call observability: how each document was resolved
// and which network layers degraded along the way. Soft errors never imply a
// missing result.
type Report struct {
	CacheHits  int
	TierCounts map[domain.Tier]int
	SoftErrors []error
}

func NewOrchestrator(client llm.Client, processingCache *cache.Cache, cfg *config.Config, logger *zerolog.Logger) *Orchestrator {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return &Orchestrator{
		cache:      processingCache,
		batch:      NewBatchProcessor(client, cfg, logger),
		concurrent: NewConcurrentSummarizer(client, cfg, logger),
		extractive: NewExtractiveSummarizer(),
		logger:     logger,
	}
}

// Process mutates docs in place: cleans and derives features, applies cached
// results, then walks the fallback chain for the rest. It always returns a
// report; it never returns fewer results than documents, and cancellation
// only skips the network layers.
func (o *Orchestrator) Process(ctx context.Context, docs []*domain.Document, style domain.SummaryStyle, useCache bool) *Report {
	report := &Report{TierCounts: make(map[domain.Tier]int)}

	for _, doc := range docs {
		deriveFeatures(doc)
	}

	pending := docs
	if useCache {
		pending = o.applyCache(docs, report)
	}

	if len(pending) > 0 {
		pending = o.runBatchLayer(ctx, pending, style, useCache, report)
	}

	if len(pending) > 0 {
		pending = o.runConcurrentLayer(ctx, pending, style, useCache, report)
	}

	for _, doc := range pending {
		o.applyResult(doc, o.extractive.Summarize(doc, style), domain.TierExtractive, useCache, report)
	}

	o.logger.Info().
		Int(logKeyCount, len(docs)).
		Int("cache_hits", report.CacheHits).
		Int("degraded", len(report.SoftErrors)).
		Msg("processing finished")

	return report
}

// applyCache partitions docs into hits and misses, resolving hits
// immediately so they consume no LLM capacity. It returns the miss set.
func (o *Orchestrator) applyCache(docs []*domain.Document, report *Report) []*domain.Document {
	misses := make([]*domain.Document, 0, len(docs))

	for _, doc := range docs {
		entry, err := o.cache.Get(doc)
		if errors.Is(err, errors.ErrCacheNotFound) {
			observability.CacheMisses.Inc()
			misses = append(misses, doc)

			continue
		}

		observability.CacheHits.Inc()

		doc.Summary = entry.Summary
		doc.KeyPoints = entry.KeyPoints
		doc.Tier = domain.TierCache

		if len(doc.Keywords) == 0 {
			doc.Keywords = entry.Keywords
		}

		report.CacheHits++
		report.TierCounts[domain.TierCache]++
		observability.SummaryTier.WithLabelValues(string(domain.TierCache)).Inc()
	}

	return misses
}

// runBatchLayer dispatches pending docs to the batch processor and applies
// whatever it resolved. Empty placeholders are failures and stay pending.
func (o *Orchestrator) runBatchLayer(ctx context.Context, pending []*domain.Document, style domain.SummaryStyle, writeCache bool, report *Report) []*domain.Document {
	if ctx.Err() != nil {
		return pending
	}

	results, softErrors := o.batch.Process(ctx, pending, style)
	report.SoftErrors = append(report.SoftErrors, softErrors...)

	return o.applyLayerResults(pending, results, domain.TierBatch, writeCache, report)
}

func (o *Orchestrator) runConcurrentLayer(ctx context.Context, pending []*domain.Document, style domain.SummaryStyle, writeCache bool, report *Report) []*domain.Document {
	if ctx.Err() != nil {
		return pending
	}

	results, softErrors := o.concurrent.SummarizeAll(ctx, pending, style)
	report.SoftErrors = append(report.SoftErrors, softErrors...)

	return o.applyLayerResults(pending, results, domain.TierConcurrent, writeCache, report)
}

// applyLayerResults attaches non-empty results to their documents and
// returns the documents that still need the next fallback layer. results is
// aligned with docs by index, never re-matched by content.
func (o *Orchestrator) applyLayerResults(docs []*domain.Document, results []domain.SummaryResult, tier domain.Tier, writeCache bool, report *Report) []*domain.Document {
	var remaining []*domain.Document

	for i, doc := range docs {
		if i >= len(results) || results[i].Empty() {
			remaining = append(remaining, doc)
			continue
		}

		o.applyResult(doc, results[i], tier, writeCache, report)
	}

	return remaining
}

func (o *Orchestrator) applyResult(doc *domain.Document, result domain.SummaryResult, tier domain.Tier, writeCache bool, report *Report) {
	doc.Summary = result.Summary
	doc.KeyPoints = result.KeyPoints
	doc.Tier = tier

	report.TierCounts[tier]++
	observability.SummaryTier.WithLabelValues(string(tier)).Inc()

	if writeCache {
		o.cache.Set(doc, result, doc.Keywords)
	}
}
