package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpipe/contentpipe/internal/cache"
	"github.com/contentpipe/contentpipe/internal/core/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test cleanup

	return db
}

func TestStore_SaveAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	docs := []*domain.Document{
		{
			ID:          "a",
			Title:       "First",
			URL:         "http://example.com/a",
			Source:      "example.com",
			Summary:     "summary a",
			KeyPoints:   []string{"p1", "p2"},
			Keywords:    []string{"k1"},
			Tier:        domain.TierBatch,
			PublishedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:      "b",
			Title:   "Second",
			Source:  "example.com",
			Summary: "summary b",
			Tier:    domain.TierExtractive,
		},
	}

	require.NoError(t, db.SaveDocuments(ctx, docs))

	saved, err := db.RecentDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	byID := make(map[string]ProcessedDocument, len(saved))
	for _, doc := range saved {
		byID[doc.ID] = doc
	}

	assert.Equal(t, "summary a", byID["a"].Summary)
	assert.Equal(t, []string{"p1", "p2"}, byID["a"].KeyPoints)
	assert.Equal(t, []string{"k1"}, byID["a"].Keywords)
	assert.Equal(t, string(domain.TierBatch), byID["a"].Tier)
	assert.Equal(t, "summary b", byID["b"].Summary)
}

func TestStore_UpsertReplacesSummary(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := &domain.Document{ID: "a", Title: "First", Summary: "old", Tier: domain.TierExtractive}
	require.NoError(t, db.SaveDocuments(ctx, []*domain.Document{doc}))

	doc.Summary = "new"
	doc.Tier = domain.TierBatch
	require.NoError(t, db.SaveDocuments(ctx, []*domain.Document{doc}))

	saved, err := db.RecentDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	assert.Equal(t, "new", saved[0].Summary)
	assert.Equal(t, string(domain.TierBatch), saved[0].Tier)
}

func TestStore_RecentLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.SaveDocuments(ctx, []*domain.Document{
			{ID: id, Title: id, Summary: "s"},
		}))
	}

	saved, err := db.RecentDocuments(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestStore_CountBySource(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveDocuments(ctx, []*domain.Document{
		{ID: "a", Title: "a", Summary: "s", Source: "one"},
		{ID: "b", Title: "b", Summary: "s", Source: "one"},
		{ID: "c", Title: "c", Summary: "s", Source: "two"},
	}))

	counts, err := db.CountBySource(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, counts["one"])
	assert.Equal(t, 1, counts["two"])
}

func TestStore_CacheEntriesRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	created := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	entries := []cache.Entry{
		{Hash: "h1", Summary: "summary one", KeyPoints: []string{"p1"}, Keywords: []string{"k1"}, CreatedAt: created, TTL: time.Hour},
		{Hash: "h2", Summary: "summary two", CreatedAt: created, TTL: time.Minute},
	}

	require.NoError(t, db.SaveCacheEntries(ctx, entries))

	loaded, err := db.LoadCacheEntries(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byHash := make(map[string]cache.Entry, len(loaded))
	for _, entry := range loaded {
		byHash[entry.Hash] = entry
	}

	assert.Equal(t, "summary one", byHash["h1"].Summary)
	assert.Equal(t, []string{"p1"}, byHash["h1"].KeyPoints)
	assert.Equal(t, []string{"k1"}, byHash["h1"].Keywords)
	assert.Equal(t, time.Hour, byHash["h1"].TTL)
	assert.Equal(t, time.Minute, byHash["h2"].TTL)

	// Upsert replaces the stored summary for an existing hash.
	entries[0].Summary = "summary one updated"
	require.NoError(t, db.SaveCacheEntries(ctx, entries[:1]))

	loaded, err = db.LoadCacheEntries(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	for _, entry := range loaded {
		if entry.Hash == "h1" {
			assert.Equal(t, "summary one updated", entry.Summary)
		}
	}
}

func TestStore_Ping(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
