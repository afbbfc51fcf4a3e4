package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient talks to any OpenAI-compatible chat endpoint, including
// OpenRouter and self-hosted gateways via BaseURL.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	temp    float32
	maxTok  int
	timeout timeoutFunc
	log     *zap.Logger
}

type timeoutFunc func(context.Context) (context.Context, context.CancelFunc)

// NewOpenAIClient builds a client from cfg. The API key is mandatory.
func NewOpenAIClient(cfg Config, log *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", ErrConfig)
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	if log == nil {
		log = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	withTimeout := func(ctx context.Context) (context.Context, context.CancelFunc) {
		if cfg.Timeout <= 0 {
			return ctx, func() {}
		}
		return context.WithTimeout(ctx, cfg.Timeout)
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		temp:    cfg.Temperature,
		maxTok:  cfg.MaxTokens,
		timeout: withTimeout,
		log:     log,
	}, nil
}

// Provider implements Client.
func (c *OpenAIClient) Provider() string { return "openai" }

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// CompleteWithSystem implements Client.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	})
}

func (c *OpenAIClient) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	ctx, cancel := c.timeout(ctx)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temp,
		MaxTokens:   c.maxTok,
	})
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// classify maps provider errors onto the package sentinels. Auth and quota
// failures become non-retryable; everything else stays a transport failure
// the caller may retry.
func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.log.Warn("OpenAI rejected credentials", zap.Int("status", apiErr.HTTPStatusCode))
			return fmt.Errorf("%w: %w: %s", ErrNonRetryable, ErrAuth, apiErr.Message)
		case http.StatusTooManyRequests:
			c.log.Warn("OpenAI quota exhausted")
			return fmt.Errorf("%w: %w: %s", ErrNonRetryable, ErrQuota, apiErr.Message)
		}
	}
	return fmt.Errorf("OpenAI completion failed: %w", err)
}
