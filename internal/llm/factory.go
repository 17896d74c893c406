package llm

import (
	"fmt"
	"strings"
)

// Default endpoints per provider
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
)

// NewProvider creates a provider based on configuration
func NewProvider(config Config, opts ...Option) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openrouter", "":
		if config.BaseURL == "" {
			config.BaseURL = OpenRouterBaseURL
		}
		return NewOpenAIProvider("openrouter", config, opts...)

	case "openai":
		if config.BaseURL == "" {
			config.BaseURL = OpenAIBaseURL
		}
		// OpenRouter attribution headers mean nothing to OpenAI
		config.SiteURL, config.SiteTitle = "", ""
		return NewOpenAIProvider("openai", config, opts...)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openrouter, openai)", config.Provider)
	}
}

// APIKeyEnv returns the environment variable conventionally holding the
// credential for a provider
func APIKeyEnv(provider string) string {
	if strings.EqualFold(provider, "openai") {
		return "OPENAI_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}
