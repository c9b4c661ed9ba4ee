package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/platform/config"
	"github.com/contentpipe/contentpipe/internal/store"
)

func testAppConfig() *config.Config {
	return &config.Config{
		LLMModel:         "gpt-4o-mini",
		MaxBatchSize:     20,
		MaxContentLength: 48000,
		MaxConcurrency:   5,
		CacheTTL:         time.Hour,
		CacheMaxSize:     100,
		SummaryStyle:     "short_paragraph",
	}
}

func appDocs(n int) []*domain.Document {
	docs := make([]*domain.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, &domain.Document{
			ID:    fmt.Sprintf("doc-%d", i),
			Title: fmt.Sprintf("Document title %d", i),
			Body:  fmt.Sprintf("Body text for document %d. It has a second sentence.", i),
		})
	}

	return docs
}

func TestApp_CacheSharedAcrossCalls(t *testing.T) {
	a := New(testAppConfig(), nil, nil)
	ctx := context.Background()

	_, err := a.ProcessDocuments(ctx, appDocs(3), "", true)
	require.NoError(t, err)

	report, err := a.ProcessDocuments(ctx, appDocs(3), "", true)
	require.NoError(t, err)

	assert.Equal(t, 3, report.CacheHits, "second call must reuse the first call's cache")
	assert.Equal(t, 3, report.TierCounts[domain.TierCache])
}

func TestApp_CachePersistsAcrossRestarts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath)
	require.NoError(t, err)

	cfg := testAppConfig()
	ctx := context.Background()

	first := New(cfg, db, nil)
	_, err = first.ProcessDocuments(ctx, appDocs(2), "", true)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test cleanup

	second := New(cfg, db, nil)

	report, err := second.ProcessDocuments(ctx, appDocs(2), "", true)
	require.NoError(t, err)

	assert.Equal(t, 2, report.CacheHits, "a restarted app must hydrate the cache from the store")
}

func TestApp_InvalidStyleRejected(t *testing.T) {
	a := New(testAppConfig(), nil, nil)

	_, err := a.ProcessDocuments(context.Background(), appDocs(1), "haiku", true)
	require.Error(t, err)
}
