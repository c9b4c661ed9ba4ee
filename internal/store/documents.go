package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/contentpipe/contentpipe/internal/core/domain"
)

// ProcessedDocument is the persisted row for one pipeline output.
type ProcessedDocument struct {
	ID          string
	Title       string
	URL         string
	Source      string
	Summary     string
	KeyPoints   []string
	Keywords    []string
	Tier        string
	PublishedAt time.Time
	ProcessedAt time.Time
}

// SaveDocuments upserts processed documents in one transaction.
func (db *DB) SaveDocuments(ctx context.Context, docs []*domain.Document) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, title, url, source, summary, key_points, keywords, tier, published_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			summary = excluded.summary,
			key_points = excluded.key_points,
			keywords = excluded.keywords,
			tier = excluded.tier,
			processed_at = excluded.processed_at
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // statement close error is not actionable

	now := time.Now()

	for _, doc := range docs {
		keyPoints, err := json.Marshal(doc.KeyPoints)
		if err != nil {
			return fmt.Errorf("marshal key points: %w", err)
		}

		keywords, err := json.Marshal(doc.Keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}

		var publishedAt interface{}
		if !doc.PublishedAt.IsZero() {
			publishedAt = doc.PublishedAt
		}

		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Title, doc.URL, doc.Source,
			doc.Summary, string(keyPoints), string(keywords), string(doc.Tier), publishedAt, now); err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// RecentDocuments returns the most recently processed documents, newest first.
func (db *DB) RecentDocuments(ctx context.Context, limit int) ([]ProcessedDocument, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, COALESCE(url, ''), COALESCE(source, ''), summary,
		       COALESCE(key_points, '[]'), COALESCE(keywords, '[]'), COALESCE(tier, ''),
		       COALESCE(published_at, ''), processed_at
		FROM documents
		ORDER BY processed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent documents: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows close error is not actionable

	var docs []ProcessedDocument

	for rows.Next() {
		var (
			doc          ProcessedDocument
			keyPointsRaw string
			keywordsRaw  string
			publishedRaw string
		)

		if err := rows.Scan(&doc.ID, &doc.Title, &doc.URL, &doc.Source, &doc.Summary,
			&keyPointsRaw, &keywordsRaw, &doc.Tier, &publishedRaw, &doc.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		_ = json.Unmarshal([]byte(keyPointsRaw), &doc.KeyPoints) //nolint:errcheck // best effort, empty on malformed rows
		_ = json.Unmarshal([]byte(keywordsRaw), &doc.Keywords)   //nolint:errcheck // best effort, empty on malformed rows

		if publishedRaw != "" {
			if parsed, err := time.Parse(time.RFC3339, publishedRaw); err == nil {
				doc.PublishedAt = parsed
			}
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// CountBySource returns document counts grouped by source label.
func (db *DB) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(source, ''), COUNT(*)
		FROM documents
		GROUP BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("query counts by source: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows close error is not actionable

	counts := make(map[string]int)

	for rows.Next() {
		var (
			source string
			count  int
		)

		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}

		counts[source] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}
