// Package config loads attribute-engine configuration from config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigFile is the optional YAML configuration file read at startup.
const ConfigFile = "config.yaml"

// Config holds all configuration for attribute-engine.
// Environment variables override YAML values; secrets (API keys) must only
// come from environment variables. Every field has a default, so the service
// starts with no configuration at all.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Completion provider configuration
	AI AIConfig `yaml:"ai"`

	// Attribute generation configuration
	Generation GenerationConfig `yaml:"generation"`
}

// AIConfig holds completion provider settings.
type AIConfig struct {
	// Provider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	// Endpoint is the base URL for OpenAI-compatible providers. Leave empty
	// for Anthropic to use its default endpoint.
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`

	// Model is the completion model name.
	Model string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`

	// APIKey is the explicit credential. When empty, the provider-specific
	// environment variable (OPENAI_API_KEY / ANTHROPIC_API_KEY) is consulted
	// at call time. Secret - not in YAML.
	APIKey string `yaml:"-" env:"AI_API_KEY"`

	// Temperature is the sampling temperature for attribute generation.
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.7"`
}

// GenerationConfig holds orchestration settings for attribute generation.
type GenerationConfig struct {
	// SystemPrompt is sent with every completion request.
	SystemPrompt string `yaml:"system_prompt" env:"GENERATION_SYSTEM_PROMPT" env-default:"You are a retail taxonomy expert. You respond only with valid JSON."`

	// UserPromptTemplate is the per-subcategory prompt. The {category}
	// placeholder is substituted with the sanitized subcategory name.
	UserPromptTemplate string `yaml:"user_prompt_template" env:"GENERATION_USER_PROMPT_TEMPLATE" env-default:"Generate exactly 3 short descriptive attributes for the product subcategory '{category}'. Each attribute is at most 50 characters. Respond with a JSON object containing a single 'attributes' array of 3 strings."`

	// MaxConcurrency bounds simultaneous completion calls per batch.
	MaxConcurrency int `yaml:"max_concurrency" env:"GENERATION_MAX_CONCURRENCY" env-default:"5"`

	// CacheTTLMinutes is how long generated attribute sets stay cached.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" env:"GENERATION_CACHE_TTL_MINUTES" env-default:"10"`
}

// CacheTTL returns the cache expiry as a duration.
func (g *GenerationConfig) CacheTTL() time.Duration {
	return time.Duration(g.CacheTTLMinutes) * time.Minute
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config file is not an error; defaults and environment
// variables apply. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(ConfigFile); err == nil {
		if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Generation.MaxConcurrency < 1 {
		return nil, fmt.Errorf("generation.max_concurrency must be at least 1, got %d", cfg.Generation.MaxConcurrency)
	}
	if cfg.Generation.CacheTTLMinutes < 0 {
		return nil, fmt.Errorf("generation.cache_ttl_minutes must not be negative, got %d", cfg.Generation.CacheTTLMinutes)
	}

	return cfg, nil
}
