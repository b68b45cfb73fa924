package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the configured backend and wraps it, outermost
// first, in a deadline, retries and request logging. The mock backend is
// returned bare.
func NewProvider(ctx context.Context, cfg Config, sink EventSink) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, sink)
	return WithDeadline(WithRetry(logged, cfg.Retry), cfg.Timeout), nil
}

// NewProviderFromEnv resolves configuration from QUIZWATCH_* variables
// first, then from the vendors' standard API key variables. It returns
// (nil, nil) when no provider is configured at all.
func NewProviderFromEnv(ctx context.Context, sink EventSink) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, nil
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, sink)
}
