package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderLMStudio   = "lmstudio"
)

// NewClient creates an inference client based on provider configuration.
func NewClient(provider, model, baseURL string, maxTokens int) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenRouter:
		return NewOpenRouterClient(model, baseURL, maxTokens)
	case ProviderOllama:
		return NewOllamaClient(model, baseURL, maxTokens)
	case ProviderLMStudio, "lm-studio", "llmstudio":
		return NewLMStudioClient(model, baseURL, maxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
