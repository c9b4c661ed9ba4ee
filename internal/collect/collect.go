// Package collect produces Documents from configured RSS/Atom feeds. It is
// a boundary collaborator of the pipeline: the pipeline never asks it to
// re-fetch.
package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/platform/config"
)

const defaultPerFeedLimit = 20

// Log key strings
const (
	logKeyFeed   = "feed"
	logKeySource = "source"
	logKeyURL    = "url"
)

// Collector fetches configured feeds and emits Documents.
type Collector struct {
	feeds            []string
	perFeedLimit     int
	fetchFullContent bool
	parser           *gofeed.Parser
	httpClient       *http.Client
	logger           *zerolog.Logger
}

func New(cfg *config.Config, logger *zerolog.Logger) *Collector {
	perFeedLimit := cfg.FeedFetchLimit
	if perFeedLimit <= 0 {
		perFeedLimit = defaultPerFeedLimit
	}

	return &Collector{
		feeds:            cfg.Feeds,
		perFeedLimit:     perFeedLimit,
		fetchFullContent: cfg.FetchFullContent,
		parser:           gofeed.NewParser(),
		httpClient:       &http.Client{Timeout: cfg.WebFetchTimeout},
		logger:           logger,
	}
}

// Fetch parses every configured feed. A failing feed is logged and skipped;
// it never aborts collection from the other feeds.
func (c *Collector) Fetch(ctx context.Context) []*domain.Document {
	var docs []*domain.Document

	for _, feedURL := range c.feeds {
		if ctx.Err() != nil {
			break
		}

		feedDocs, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			c.logger.Warn().Err(err).Str(logKeyFeed, feedURL).Msg("feed fetch failed")
			continue
		}

		c.logger.Info().Str(logKeyFeed, feedURL).Int("items", len(feedDocs)).Msg("feed fetched")

		docs = append(docs, feedDocs...)
	}

	return docs
}

func (c *Collector) fetchFeed(ctx context.Context, feedURL string) ([]*domain.Document, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	source := feed.Title
	if source == "" {
		source = sourceFromURL(feedURL)
	}

	docs := make([]*domain.Document, 0, c.perFeedLimit)

	for _, item := range feed.Items {
		if len(docs) >= c.perFeedLimit {
			break
		}

		doc := c.itemToDocument(ctx, item, source)
		if doc != nil {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

func (c *Collector) itemToDocument(ctx context.Context, item *gofeed.Item, source string) *domain.Document {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	if c.fetchFullContent && item.Link != "" {
		if full := c.fetchArticle(ctx, item.Link); full != "" {
			body = full
		}
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		URL:       item.Link,
		Source:    source,
		Keywords:  item.Categories,
		FetchedAt: time.Now(),
	}

	if item.PublishedParsed != nil {
		doc.PublishedAt = *item.PublishedParsed
	}

	return doc
}

// fetchArticle resolves the readable article body behind a link. Best
// effort: any failure falls back to the feed-provided content.
func (c *Collector) fetchArticle(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str(logKeyURL, link).Msg("article fetch failed")
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		c.logger.Debug().Err(err).Str(logKeyURL, link).Msg("readability extraction failed")
		return ""
	}

	return article.TextContent
}

func sourceFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	return strings.TrimPrefix(parsed.Host, "www.")
}
