package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds configuration for creating a completion client.
type Config struct {
	Endpoint    string  // Base URL, e.g., "https://api.openai.com/v1"
	Model       string  // Model name, e.g., "gpt-4o-mini"
	APIKey      string  // Explicit credential; takes precedence over APIKeyEnv
	APIKeyEnv   string  // Fallback environment variable for the credential
	Temperature float64 // Sampling temperature applied to every request
}

// ResolveAPIKey returns the credential for this config: the explicit value
// if set, else the fallback environment variable. Empty means unconfigured.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// Client talks to OpenAI-compatible completion endpoints.
type Client struct {
	client      *openai.Client
	endpoint    string
	model       string
	temperature float64
	hasKey      bool
	logger      *zap.Logger
}

// NewClient creates a completion client for an OpenAI-compatible endpoint.
// A missing credential is not an error here; Complete reports it without
// attempting a network call, so an unconfigured process still starts.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := cfg.ResolveAPIKey()
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		hasKey:      apiKey != "",
		logger:      logger.Named("llm"),
	}, nil
}

// Complete sends one chat completion request and returns the first choice's
// text content. It never retries.
func (c *Client) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if !c.hasKey {
		return "", NewError(ErrorTypeConfig, "no API key configured", nil)
	}

	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userPrompt)),
		zap.Float64("temperature", c.temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: float32(c.temperature),
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewError(ErrorTypeEmptyResponse, "completion returned no content", nil)
	}

	c.logger.Info("completion request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// classifyOpenAIError maps go-openai transport errors onto the structured
// Error type, keeping the provider status code and a bounded body excerpt.
func classifyOpenAIError(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewUpstreamError(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewUpstreamError(reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}

	return ClassifyError(err)
}

// Ensure Client implements CompletionClient at compile time.
var _ CompletionClient = (*Client)(nil)
