package llm

import (
	"context"
	"sync/atomic"
)

// MockCompletionClient is a configurable mock for testing completion flows.
// Set CompleteFunc to control behavior; call counts are tracked atomically
// so concurrent workers can be asserted against.
type MockCompletionClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	completeCalls atomic.Int64
}

// NewMockCompletionClient creates a new mock with sensible defaults.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// Complete implements CompletionClient.
func (m *MockCompletionClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	m.completeCalls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return "", nil
}

// CompleteCalls returns how many times Complete has been invoked.
func (m *MockCompletionClient) CompleteCalls() int {
	return int(m.completeCalls.Load())
}

// GetModel implements CompletionClient.
func (m *MockCompletionClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements CompletionClient.
func (m *MockCompletionClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// Reset clears call tracking counters.
func (m *MockCompletionClient) Reset() {
	m.completeCalls.Store(0)
}

// Ensure MockCompletionClient implements CompletionClient at compile time.
var _ CompletionClient = (*MockCompletionClient)(nil)
