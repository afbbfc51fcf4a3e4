package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through the official GenAI SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	temp    float32
	maxTok  int
	timeout timeoutFunc
	log     *zap.Logger
}

// NewGeminiClient builds a client from cfg. The API key is mandatory.
func NewGeminiClient(ctx context.Context, cfg Config, log *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", ErrConfig)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	withTimeout := func(ctx context.Context) (context.Context, context.CancelFunc) {
		if cfg.Timeout <= 0 {
			return ctx, func() {}
		}
		return context.WithTimeout(ctx, cfg.Timeout)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		temp:    cfg.Temperature,
		maxTok:  cfg.MaxTokens,
		timeout: withTimeout,
		log:     log,
	}, nil
}

// Provider implements Client.
func (c *GeminiClient) Provider() string { return "gemini" }

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "", prompt)
}

// CompleteWithSystem implements Client.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.generate(ctx, systemPrompt, userPrompt)
}

func (c *GeminiClient) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := c.timeout(ctx)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temp),
	}
	if c.maxTok > 0 {
		config.MaxOutputTokens = int32(c.maxTok)
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", c.classify(err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func (c *GeminiClient) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.log.Warn("Gemini rejected credentials", zap.Int("status", apiErr.Code))
			return fmt.Errorf("%w: %w: %s", ErrNonRetryable, ErrAuth, apiErr.Message)
		case http.StatusTooManyRequests:
			c.log.Warn("Gemini quota exhausted")
			return fmt.Errorf("%w: %w: %s", ErrNonRetryable, ErrQuota, apiErr.Message)
		}
	}
	return fmt.Errorf("Gemini completion failed: %w", err)
}
