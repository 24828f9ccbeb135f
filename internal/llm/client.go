// Package llm implements the extraction, disambiguation, translation and
// composition collaborators on top of an OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/prompt"
	"github.com/goliatone/go-adfeatures/pkg/collab"
)

const service = "llm"

// Config selects the model endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	HTTPClient  *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrompts replaces the default prompt engine.
func WithPrompts(prompts *prompt.Engine) Option {
	return func(c *Client) {
		if prompts != nil {
			c.prompts = prompts
		}
	}
}

// Client talks to the chat completion endpoint. It implements
// collab.Extractor, collab.Disambiguator, collab.Translator and
// collab.Composer.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	prompts     *prompt.Engine
	logger      *zap.Logger
}

var (
	_ collab.Extractor     = (*Client)(nil)
	_ collab.Disambiguator = (*Client)(nil)
	_ collab.Translator    = (*Client)(nil)
	_ collab.Composer      = (*Client)(nil)
)

// New builds a Client.
func New(cfg Config, options ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm: model is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	c := &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.prompts == nil {
		prompts, err := prompt.New()
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		c.prompts = prompts
	}
	return c, nil
}

// complete sends a system and user message pair and returns the reply text.
func (c *Client) complete(ctx context.Context, op, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", collab.Wrap(service, op, err)
	}
	if len(resp.Choices) == 0 {
		return "", collab.Wrap(service, op, collab.ErrNoResult)
	}
	content := resp.Choices[0].Message.Content
	c.logger.Debug("llm reply",
		zap.String("op", op),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return content, nil
}

func (c *Client) render(op, name string, data map[string]any) (string, error) {
	out, err := c.prompts.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w", op, err)
	}
	return out, nil
}

func adText(text string) string {
	return "ТЕКСТ ОБЪЯВЛЕНИЯ:\n" + text
}
