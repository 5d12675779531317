package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone       = "none"
	ProviderAuto       = "auto"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures an LLM provider.
type Config struct {
	// Provider is one of the Provider* names. Empty or "none" disables
	// LLM features.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a disabled Config with model and retry defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderNone,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// ApplyEnv overlays every non-empty LEVELUP_LLM_* variable onto c.
func (c *Config) ApplyEnv(getenv func(string) string) {
	vars := []struct {
		name string
		dst  *string
	}{
		{"LEVELUP_LLM_PROVIDER", &c.Provider},
		{"LEVELUP_LLM_ANTHROPIC_API_KEY", &c.Anthropic.APIKey},
		{"LEVELUP_LLM_ANTHROPIC_MODEL", &c.Anthropic.Model},
		{"LEVELUP_LLM_ANTHROPIC_BASE_URL", &c.Anthropic.BaseURL},
		{"LEVELUP_LLM_OPENAI_API_KEY", &c.OpenAI.APIKey},
		{"LEVELUP_LLM_OPENAI_MODEL", &c.OpenAI.Model},
		{"LEVELUP_LLM_OPENAI_BASE_URL", &c.OpenAI.BaseURL},
		{"LEVELUP_LLM_GEMINI_API_KEY", &c.Gemini.APIKey},
		{"LEVELUP_LLM_GEMINI_MODEL", &c.Gemini.Model},
		{"LEVELUP_LLM_OPENROUTER_API_KEY", &c.OpenRouter.APIKey},
		{"LEVELUP_LLM_OPENROUTER_MODEL", &c.OpenRouter.Model},
		{"LEVELUP_LLM_OPENROUTER_BASE_URL", &c.OpenRouter.BaseURL},
	}
	for _, v := range vars {
		if val := getenv(v.name); val != "" {
			*v.dst = val
		}
	}
	if d, err := time.ParseDuration(getenv("LEVELUP_LLM_TIMEOUT")); err == nil && d > 0 {
		c.Timeout = d
	}
}

// DiscoverConfig checks the vendors' standard API key variables
// (Gemini, OpenAI, Anthropic, OpenRouter) and selects the first one set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	candidates := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range candidates {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Discover resolves ProviderAuto with DiscoverConfig, keeping c's retry
// and timeout settings. Nothing found means ProviderNone. Other providers
// are returned unchanged.
func (c Config) Discover() Config {
	if c.Provider != ProviderAuto {
		return c
	}
	found, ok := DiscoverConfig()
	if !ok {
		c.Provider = ProviderNone
		return c
	}
	found.Retry = c.Retry
	found.Timeout = c.Timeout
	return found
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "", ProviderNone, ProviderMock:
		return nil
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "LEVELUP_LLM_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "LEVELUP_LLM_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "LEVELUP_LLM_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "LEVELUP_LLM_OPENROUTER_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
