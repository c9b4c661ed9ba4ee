package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/contentpipe/contentpipe/internal/core/errors"
)

// notConfiguredClient is the sentinel client used when no API key is set.
// Every call fails fast with ErrNotConfigured so the pipeline degrades to
// the extractive path without retrying the provider.
type notConfiguredClient struct{}

// NewNotConfigured creates the sentinel not-configured client.
func NewNotConfigured() Client {
	return notConfiguredClient{}
}

func (notConfiguredClient) Configured() bool {
	return false
}

func (notConfiguredClient) Complete(context.Context, CompletionRequest) (string, error) {
	return "", errors.ErrNotConfigured
}

// MockClient is a deterministic in-process provider for tests. CompleteFunc
// takes precedence when set; otherwise the mock echoes a canned JSON array
// sized from the prompt's indexed items.
type MockClient struct {
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockClient) Configured() bool {
	return true
}

// Calls returns how many times Complete has been invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	count := strings.Count(req.Prompt, "\n[")
	if count == 0 {
		count = 1
	}

	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"summary":"mock summary %d","key_points":["mock point %d"]}`, i, i))
	}

	return "[" + strings.Join(items, ",") + "]", nil
}

var _ Client = (*MockClient)(nil)
