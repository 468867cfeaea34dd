package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai" // any OpenAI-compatible endpoint
	ProviderAnthropic = "anthropic"
)

// Fallback credential sources per provider, consulted when no explicit API
// key is configured.
const (
	openAIKeyEnv    = "OPENAI_API_KEY"
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
)

// NewCompletionClient creates the completion client for the configured
// provider. Returns the CompletionClient interface to enable dependency
// injection of mocks.
func NewCompletionClient(provider string, cfg *Config, logger *zap.Logger) (CompletionClient, error) {
	resolved := *cfg

	switch provider {
	case ProviderOpenAI, "":
		if resolved.APIKeyEnv == "" {
			resolved.APIKeyEnv = openAIKeyEnv
		}
		client, err := NewClient(&resolved, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil

	case ProviderAnthropic:
		if resolved.APIKeyEnv == "" {
			resolved.APIKeyEnv = anthropicKeyEnv
		}
		client, err := NewAnthropicClient(&resolved, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}
