// Package cache memoizes summarization results by content hash so repeated
// runs do not re-pay for identical content. Entries expire by TTL and the
// map is bounded: when full, the oldest fraction of entries is evicted
// before a new insert.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/errors"
)

const (
	hashBodyPrefixRunes  = 500
	defaultMaxSize       = 10000
	defaultEvictionRatio = 0.3
)

// Entry is a memoized summarization result for one content hash.
type Entry struct {
	Hash      string
	Summary   string
	KeyPoints []string
	Keywords  []string
	CreatedAt time.Time
	TTL       time.Duration
}

// expired treats a zero TTL as immediately stale.
func (e Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}

// Cache is a mutex-protected in-memory content-hash cache.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]Entry
	maxSize       int
	defaultTTL    time.Duration
	evictionRatio float64
	logger        *zerolog.Logger

	now func() time.Time
}

// New creates a Cache. maxSize <= 0 falls back to the default bound.
func New(maxSize int, defaultTTL time.Duration, logger *zerolog.Logger) *Cache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return &Cache{
		entries:       make(map[string]Entry),
		maxSize:       maxSize,
		defaultTTL:    defaultTTL,
		evictionRatio: defaultEvictionRatio,
		logger:        logger,
		now:           time.Now,
	}
}

// Hash returns the stable content hash of a document: SHA-256 over the title
// and the first 500 runes of the body. Pure function of content, stable
// across process restarts.
func Hash(doc *domain.Document) string {
	body := doc.Body
	if runes := []rune(body); len(runes) > hashBodyPrefixRunes {
		body = string(runes[:hashBodyPrefixRunes])
	}

	sum := sha256.Sum256([]byte(doc.Title + "\x00" + body))

	return hex.EncodeToString(sum[:])
}

// Get returns the entry for the document's content hash. Absent and expired
// entries both miss with ErrCacheNotFound; an expired entry is deleted on
// the way out.
func (c *Cache) Get(doc *domain.Document) (Entry, error) {
	hash := Hash(doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[hash]
	if !ok {
		return Entry{}, errors.ErrCacheNotFound
	}

	if entry.expired(c.now()) {
		delete(c.entries, hash)
		return Entry{}, fmt.Errorf("%w: expired", errors.ErrCacheNotFound)
	}

	return entry, nil
}

// Set stores a result under the document's content hash. The cache is
// write-once per hash: a fresh existing entry is kept as is. Empty summaries
// are never cached.
func (c *Cache) Set(doc *domain.Document, result domain.SummaryResult, keywords []string) {
	if result.Empty() {
		return
	}

	hash := Hash(doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[hash]; ok && !existing.expired(c.now()) {
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[hash] = Entry{
		Hash:      hash,
		Summary:   result.Summary,
		KeyPoints: result.KeyPoints,
		Keywords:  keywords,
		CreatedAt: c.now(),
		TTL:       c.defaultTTL,
	}
}

// CleanupExpired removes all expired entries and returns the removed count.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	for hash, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, hash)
			removed++
		}
	}

	return removed
}

// Export returns a snapshot of the fresh entries for persistence.
func (c *Cache) Export() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entries := make([]Entry, 0, len(c.entries))

	for _, entry := range c.entries {
		if !entry.expired(now) {
			entries = append(entries, entry)
		}
	}

	return entries
}

// Import seeds the cache with previously exported entries. Stale entries,
// duplicate hashes and anything beyond the size bound are skipped. It
// returns the number of entries loaded.
func (c *Cache) Import(entries []Entry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	loaded := 0

	for _, entry := range entries {
		if entry.Hash == "" || entry.expired(now) {
			continue
		}

		if _, ok := c.entries[entry.Hash]; ok {
			continue
		}

		if len(c.entries) >= c.maxSize {
			break
		}

		c.entries[entry.Hash] = entry
		loaded++
	}

	return loaded
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evictOldestLocked removes the oldest evictionRatio fraction of entries by
// CreatedAt. Caller must hold the lock.
func (c *Cache) evictOldestLocked() {
	toEvict := int(float64(len(c.entries)) * c.evictionRatio)
	if toEvict < 1 {
		toEvict = 1
	}

	type aged struct {
		hash      string
		createdAt time.Time
	}

	all := make([]aged, 0, len(c.entries))
	for hash, entry := range c.entries {
		all = append(all, aged{hash: hash, createdAt: entry.CreatedAt})
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})

	for i := 0; i < toEvict && i < len(all); i++ {
		delete(c.entries, all[i].hash)
	}

	c.logger.Debug().Int("evicted", toEvict).Int("remaining", len(c.entries)).Msg("cache size eviction")
}
