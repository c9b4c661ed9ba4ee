package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpipe/contentpipe/internal/core/domain"
	"github.com/contentpipe/contentpipe/internal/core/llm"
	"github.com/contentpipe/contentpipe/internal/platform/config"
)

func testBatchConfig() *config.Config {
	return &config.Config{
		LLMModel:         "gpt-4o-mini",
		MaxBatchSize:     20,
		MaxContentLength: 48000,
		BatchCallTimeout: time.Minute,
	}
}

func makeDocs(n int) []*domain.Document {
	docs := make([]*domain.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, &domain.Document{
			ID:    fmt.Sprintf("doc-%d", i),
			Title: fmt.Sprintf("title-%d", i),
			Body:  fmt.Sprintf("Body text for document %d.", i),
		})
	}

	return docs
}

var promptItemRegex = regexp.MustCompile(`\[\d+\] Title: (title-\d+)`)

// echoTitlesClient answers each batch prompt with one result per indexed
// item, tagged with the item's title, so alignment is observable.
func echoTitlesClient(groupSizes *[]int) *llm.MockClient {
	return &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (string, error) {
			matches := promptItemRegex.FindAllStringSubmatch(req.Prompt, -1)
			*groupSizes = append(*groupSizes, len(matches))

			items := make([]string, 0, len(matches))
			for _, m := range matches {
				items = append(items, fmt.Sprintf(`{"summary":"sum %s","key_points":[]}`, m[1]))
			}

			return "[" + strings.Join(items, ",") + "]", nil
		},
	}
}

func TestBatch_GroupingAndAlignment(t *testing.T) {
	var groupSizes []int

	client := echoTitlesClient(&groupSizes)
	logger := zerolog.Nop()
	p := NewBatchProcessor(client, testBatchConfig(), &logger)

	docs := makeDocs(25)

	results, softErrors := p.Process(context.Background(), docs, domain.StyleShortParagraph)

	require.Empty(t, softErrors)
	require.Len(t, results, 25)
	assert.Equal(t, []int{20, 5}, groupSizes)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("sum title-%d", i), r.Summary, "result %d misaligned", i)
	}
}

func TestBatch_ProportionalTruncation(t *testing.T) {
	var prompt string

	client := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (string, error) {
			prompt = req.Prompt
			return `[{"summary":"a","key_points":[]},{"summary":"b","key_points":[]},` +
				`{"summary":"c","key_points":[]},{"summary":"d","key_points":[]}]`, nil
		},
	}

	cfg := testBatchConfig()
	cfg.MaxContentLength = 100

	logger := zerolog.Nop()
	p := NewBatchProcessor(client, cfg, &logger)

	docs := makeDocs(4)
	for _, doc := range docs {
		doc.Body = strings.Repeat("x", 1000)
	}

	_, softErrors := p.Process(context.Background(), docs, domain.StyleShortParagraph)
	require.Empty(t, softErrors)

	// 100 runes shared across 4 documents leaves 25 per body.
	assert.Contains(t, prompt, strings.Repeat("x", 25))
	assert.NotContains(t, prompt, strings.Repeat("x", 26))
}

func TestBatch_GroupFailureDegradesOnlyItsDocuments(t *testing.T) {
	call := 0

	client := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (string, error) {
			call++
			if call == 2 {
				return "", fmt.Errorf("provider unavailable")
			}

			matches := promptItemRegex.FindAllStringSubmatch(req.Prompt, -1)

			items := make([]string, 0, len(matches))
			for range matches {
				items = append(items, `{"summary":"ok","key_points":[]}`)
			}

			return "[" + strings.Join(items, ",") + "]", nil
		},
	}

	logger := zerolog.Nop()
	p := NewBatchProcessor(client, testBatchConfig(), &logger)

	results, softErrors := p.Process(context.Background(), makeDocs(25), domain.StyleShortParagraph)

	require.Len(t, softErrors, 1)
	require.Len(t, results, 25)

	for i := 0; i < 20; i++ {
		assert.False(t, results[i].Empty(), "document %d should be resolved", i)
	}

	for i := 20; i < 25; i++ {
		assert.True(t, results[i].Empty(), "document %d should stay pending", i)
	}
}

func TestBatch_MalformedGroupResponse(t *testing.T) {
	client := &llm.MockClient{
		CompleteFunc: func(context.Context, llm.CompletionRequest) (string, error) {
			return "I am unable to process these documents.", nil
		},
	}

	logger := zerolog.Nop()
	p := NewBatchProcessor(client, testBatchConfig(), &logger)

	results, softErrors := p.Process(context.Background(), makeDocs(3), domain.StyleShortParagraph)

	require.Len(t, softErrors, 1)

	for i, r := range results {
		assert.True(t, r.Empty(), "document %d should stay pending", i)
	}
}

func TestBatch_NotConfigured(t *testing.T) {
	logger := zerolog.Nop()
	p := NewBatchProcessor(llm.NewNotConfigured(), testBatchConfig(), &logger)

	results, softErrors := p.Process(context.Background(), makeDocs(3), domain.StyleShortParagraph)

	assert.Empty(t, softErrors)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.True(t, r.Empty())
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	client := &llm.MockClient{}
	logger := zerolog.Nop()
	p := NewBatchProcessor(client, testBatchConfig(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _ := p.Process(ctx, makeDocs(5), domain.StyleShortParagraph)

	assert.Zero(t, client.Calls())

	for _, r := range results {
		assert.True(t, r.Empty())
	}
}

func TestMaxTokensForGroup(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{size: 1, want: 1600},
		{size: 5, want: 4000},
		{size: 20, want: 13000},
		{size: 30, want: 16000},
	}

	for _, tt := range tests {
		if got := maxTokensForGroup(tt.size); got != tt.want {
			t.Errorf("maxTokensForGroup(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
