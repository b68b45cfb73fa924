package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend: "anthropic", "openai", "gemini",
	// "openrouter" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including its retries. Zero
	// disables the deadline. Default: 45s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Used by tests and proxies.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Any OpenAI-compatible endpoint.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// PurposeAttempts overrides MaxAttempts per purpose label. Attention
	// frames go stale within one cycle, so they get a single attempt.
	PurposeAttempts map[string]int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialWait:     time.Second,
			MaxWait:         10 * time.Second,
			Multiplier:      2.0,
			PurposeAttempts: map[string]int{PurposeAttention: 1},
		},
		Timeout: 45 * time.Second,
	}
}

// envBindings maps QUIZWATCH_* variables onto Config fields.
var envBindings = map[string]func(*Config, string){
	"QUIZWATCH_LLM_PROVIDER":       func(c *Config, v string) { c.Provider = v },
	"QUIZWATCH_ANTHROPIC_API_KEY":  func(c *Config, v string) { c.Anthropic.APIKey = v },
	"QUIZWATCH_ANTHROPIC_MODEL":    func(c *Config, v string) { c.Anthropic.Model = v },
	"QUIZWATCH_ANTHROPIC_BASE_URL": func(c *Config, v string) { c.Anthropic.BaseURL = v },
	"QUIZWATCH_OPENAI_API_KEY":     func(c *Config, v string) { c.OpenAI.APIKey = v },
	"QUIZWATCH_OPENAI_MODEL":       func(c *Config, v string) { c.OpenAI.Model = v },
	"QUIZWATCH_OPENAI_BASE_URL":    func(c *Config, v string) { c.OpenAI.BaseURL = v },
	"QUIZWATCH_GEMINI_API_KEY":     func(c *Config, v string) { c.Gemini.APIKey = v },
	"QUIZWATCH_GEMINI_MODEL":       func(c *Config, v string) { c.Gemini.Model = v },
	"QUIZWATCH_OPENROUTER_API_KEY": func(c *Config, v string) { c.OpenRouter.APIKey = v },
	"QUIZWATCH_OPENROUTER_MODEL":   func(c *Config, v string) { c.OpenRouter.Model = v },
	"QUIZWATCH_LLM_TIMEOUT": func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Timeout = d
		}
	},
	"QUIZWATCH_LLM_MAX_ATTEMPTS": func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retry.MaxAttempts = n
		}
	},
}

// ConfigFromEnv builds a Config from QUIZWATCH_* variables on top of the
// defaults. Malformed numeric values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, set := range envBindings {
		if v := os.Getenv(name); v != "" {
			set(&cfg, v)
		}
	}
	return cfg
}

// vendorKeys lists the vendors' own API key variables in discovery order.
var vendorKeys = []struct {
	env      string
	provider string
	set      func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
	{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
}

// DiscoverConfig picks the first vendor whose standard API key variable
// is set. It reports false when none is.
func DiscoverConfig() (Config, bool) {
	for _, vk := range vendorKeys {
		if k := os.Getenv(vk.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = vk.provider
			vk.set(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "mock":
		return nil
	case "anthropic":
		key, env = c.Anthropic.APIKey, "QUIZWATCH_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "QUIZWATCH_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "QUIZWATCH_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "QUIZWATCH_OPENROUTER_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
