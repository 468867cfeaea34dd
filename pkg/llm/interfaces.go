// Package llm wraps external text-completion providers behind a small
// client interface with structured error classification.
package llm

import (
	"context"
)

// CompletionClient is the outbound boundary to a text-completion provider.
// Implementations issue exactly one network call per Complete invocation and
// never retry internally; retry policy belongs to the caller.
// Use this interface for dependency injection to enable mocking in tests.
type CompletionClient interface {
	// Complete sends one completion request and returns the first message's
	// text content.
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}
