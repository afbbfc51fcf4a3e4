// Package llm abstracts the text-completion providers behind one interface
// so the generation pipeline and its tests never depend on a concrete SDK.
package llm

import (
	"context"
	"errors"
	"time"
)

// Client is the completion surface the generation pipeline consumes.
type Client interface {
	// Complete sends a single-turn prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a system prompt alongside the user prompt.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Provider names the backing service, for logs and metrics.
	Provider() string
}

// Sentinel errors for provider failures. Auth and quota failures wrap
// ErrNonRetryable: retrying the same request cannot succeed, so callers must
// stop immediately instead of burning their attempt budget.
var (
	ErrNonRetryable  = errors.New("request cannot succeed on retry")
	ErrAuth          = errors.New("authentication rejected")
	ErrQuota         = errors.New("quota exhausted")
	ErrEmptyResponse = errors.New("model returned no content")
	ErrConfig        = errors.New("provider misconfigured")
)

// IsNonRetryable reports whether err is a terminal provider failure.
func IsNonRetryable(err error) bool {
	return errors.Is(err, ErrNonRetryable)
}

// Config holds the provider-independent client settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns settings tuned for structured educational output:
// moderate temperature, enough tokens for the longest content family.
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1500,
		Timeout:     60 * time.Second,
	}
}
