package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/contentpipe/contentpipe/internal/cache"
)

// SaveCacheEntries upserts processing-cache entries in one transaction so
// the cache survives process restarts.
func (db *DB) SaveCacheEntries(ctx context.Context, entries []cache.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cache_entries (hash, summary, key_points, keywords, created_at, ttl_ns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash) DO UPDATE SET
			summary = excluded.summary,
			key_points = excluded.key_points,
			keywords = excluded.keywords,
			created_at = excluded.created_at,
			ttl_ns = excluded.ttl_ns
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // statement close error is not actionable

	for _, entry := range entries {
		keyPoints, err := json.Marshal(entry.KeyPoints)
		if err != nil {
			return fmt.Errorf("marshal key points: %w", err)
		}

		keywords, err := json.Marshal(entry.Keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, entry.Hash, entry.Summary, string(keyPoints),
			string(keywords), entry.CreatedAt, int64(entry.TTL)); err != nil {
			return fmt.Errorf("insert cache entry %s: %w", entry.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// LoadCacheEntries returns all persisted processing-cache entries. TTL
// filtering is the cache's job on import.
func (db *DB) LoadCacheEntries(ctx context.Context) ([]cache.Entry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT hash, summary, COALESCE(key_points, '[]'), COALESCE(keywords, '[]'), created_at, ttl_ns
		FROM cache_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows close error is not actionable

	var entries []cache.Entry

	for rows.Next() {
		var (
			entry        cache.Entry
			keyPointsRaw string
			keywordsRaw  string
			ttlNS        int64
		)

		if err := rows.Scan(&entry.Hash, &entry.Summary, &keyPointsRaw, &keywordsRaw,
			&entry.CreatedAt, &ttlNS); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}

		_ = json.Unmarshal([]byte(keyPointsRaw), &entry.KeyPoints) //nolint:errcheck // best effort, empty on malformed rows
		_ = json.Unmarshal([]byte(keywordsRaw), &entry.Keywords)   //nolint:errcheck // best effort, empty on malformed rows

		entry.TTL = time.Duration(ttlNS)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}

	return entries, nil
}
