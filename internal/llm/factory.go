package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewClient builds the provider named in cfg.Provider. The returned client is
// wrapped with metrics instrumentation.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (Client, error) {
	var (
		client Client
		err    error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai", "openrouter", "":
		client, err = NewOpenAIClient(cfg, log)
	case "gemini", "genai":
		client, err = NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return InstrumentClient(client), nil
}
