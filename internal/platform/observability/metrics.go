// Package observability exposes Prometheus metrics and the optional
// metrics HTTP endpoint.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// LLMRequests counts chat-completion requests by model and status.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentpipe_llm_requests_total",
		Help: "Total LLM chat-completion requests",
	}, []string{"model", "status"})

	// LLMRequestDuration observes chat-completion latency by model.
	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contentpipe_llm_request_duration_seconds",
		Help:    "LLM chat-completion request duration",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"model"})

	// CacheHits counts processing cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contentpipe_cache_hits_total",
		Help: "Processing cache hits",
	})

	// CacheMisses counts processing cache misses (absent or expired).
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contentpipe_cache_misses_total",
		Help: "Processing cache misses",
	})

	// SummaryTier counts documents by the fallback tier that produced
	// their summary.
	SummaryTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentpipe_summary_tier_total",
		Help: "Documents summarized by fallback tier",
	}, []string{"tier"})

	// BatchGroups counts dispatched batch groups by outcome.
	BatchGroups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentpipe_batch_groups_total",
		Help: "Batch groups dispatched to the LLM provider",
	}, []string{"status"})
)

const metricsReadTimeout = 10 * time.Second

// ServeMetrics runs the Prometheus metrics endpoint until ctx is cancelled.
func ServeMetrics(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     mux,
		ReadTimeout: metricsReadTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint:errcheck // best effort shutdown
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}

	return nil
}
