package llm

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsNonRetryable(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", fmt.Errorf("%w: %w", ErrNonRetryable, ErrQuota))
	if !IsNonRetryable(wrapped) {
		t.Error("classification must survive wrapping")
	}
	if IsNonRetryable(errors.New("connection reset")) {
		t.Error("plain errors are retryable")
	}
	if IsNonRetryable(nil) {
		t.Error("nil is not a failure")
	}
}

func TestOpenAIClassify(t *testing.T) {
	c, err := NewOpenAIClient(Config{APIKey: "test"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		status       int
		nonRetryable bool
		sentinel     error
	}{
		{401, true, ErrAuth},
		{403, true, ErrAuth},
		{429, true, ErrQuota},
		{500, false, nil},
		{503, false, nil},
	}

	for _, tt := range tests {
		apiErr := &openai.APIError{HTTPStatusCode: tt.status, Message: "boom"}
		got := c.classify(apiErr)
		if IsNonRetryable(got) != tt.nonRetryable {
			t.Errorf("status %d: non-retryable = %v, want %v", tt.status, IsNonRetryable(got), tt.nonRetryable)
		}
		if tt.sentinel != nil && !errors.Is(got, tt.sentinel) {
			t.Errorf("status %d: error %v should wrap %v", tt.status, got, tt.sentinel)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewOpenAIClient(Config{}, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("missing API key should yield ErrConfig, got %v", err)
	}
}
