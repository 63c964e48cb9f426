// Package llm provides the client for the external text-generation
// capability. The capability is stateless per call; prompt assembly and
// history belong to the caller.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

var (
	// ErrGenerationUnavailable is returned when the generation capability
	// fails. Retryable by the caller; this package does not retry.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid generation configuration")
)

// Generator produces text from system instructions and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for an OpenAI-compatible chat endpoint.
// Groq's endpoint is the default, matching the hosted model the system
// was originally deployed against.
type Config struct {
	// BaseURL is the chat completions endpoint base URL.
	// Default: "https://api.groq.com/openai/v1"
	BaseURL string `koanf:"base_url"`

	// Model is the chat model name. Default: "openai/gpt-oss-20b".
	Model string `koanf:"model"`

	// APIKey authenticates the endpoint.
	APIKey string `koanf:"api_key"`

	// MaxConcurrency caps concurrent in-flight generation calls.
	// Zero means unlimited.
	MaxConcurrency int `koanf:"max_concurrency"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Model == "" {
		c.Model = "openai/gpt-oss-20b"
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	return nil
}

// New creates a generator from the configuration, wrapped with the
// configured concurrency limit.
func New(cfg Config) (Generator, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConcurrency > 0 {
		return Limit(client, cfg.MaxConcurrency), nil
	}
	return client, nil
}

// Client is a Generator backed by an OpenAI-compatible chat API.
type Client struct {
	llm *openai.LLM
}

// NewClient creates a chat completions client.
func NewClient(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Generate sends one system + user message pair and returns the model's
// reply with surrounding whitespace trimmed.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGenerationUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Ensure Client implements Generator.
var _ Generator = (*Client)(nil)
