package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
)

// ErrEmptyCompletion is returned when the provider answers without usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("suggestions are not configured")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// OpenAIGenerator calls an OpenAI compatible chat completion endpoint.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOpenAIGenerator builds a generator from config.
func NewOpenAIGenerator(cfg config.LLMConfig, logger *zap.Logger) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout(),
		logger:    logger,
	}
}

// Generate sends one chat completion request and returns the first choice verbatim.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	g.logger.Debug("suggestion generated",
		zap.String("kind", string(prompt.Kind)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

// DisabledGenerator always fails with ErrDisabled.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, Prompt) (string, error) {
	return "", ErrDisabled
}
