package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const defaultAnthropicEndpoint = "https://api.anthropic.com/v1"

// anthropicMaxTokens caps response length; three short attributes fit
// comfortably within it.
const anthropicMaxTokens = 1024

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client      *anthropic.Client
	endpoint    string
	model       string
	temperature float32
	hasKey      bool
	logger      *zap.Logger
}

// NewAnthropicClient creates a completion client backed by Anthropic.
// As with the OpenAI client, a missing credential surfaces on Complete,
// not at construction.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := cfg.ResolveAPIKey()

	endpoint := cfg.Endpoint
	var opts []anthropic.ClientOption
	if endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(endpoint, "/")))
	} else {
		endpoint = defaultAnthropicEndpoint
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(apiKey, opts...),
		endpoint:    endpoint,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		hasKey:      apiKey != "",
		logger:      logger.Named("llm-anthropic"),
	}, nil
}

// Complete sends one Messages API request and returns the first content
// block's text. It never retries.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if !c.hasKey {
		return "", NewError(ErrorTypeConfig, "no API key configured", nil)
	}

	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userPrompt)))

	start := time.Now()

	temperature := c.temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemPrompt,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(userPrompt)},
		MaxTokens:   anthropicMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", classifyAnthropicError(err)
	}

	content := resp.GetFirstContentText()
	if strings.TrimSpace(content) == "" {
		return "", NewError(ErrorTypeEmptyResponse, "completion returned no content", nil)
	}

	c.logger.Info("completion request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return c.endpoint
}

// classifyAnthropicError maps go-anthropic transport errors onto the
// structured Error type.
func classifyAnthropicError(err error) *Error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return NewUpstreamError(reqErr.StatusCode, reqErr.Error(), err)
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return NewUpstreamError(0, apiErr.Message, err)
	}

	return ClassifyError(err)
}

// Ensure AnthropicClient implements CompletionClient at compile time.
var _ CompletionClient = (*AnthropicClient)(nil)
