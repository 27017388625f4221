package models

import (
	"context"
	"fmt"
)

func NewLLMProvider(ctx context.Context, provider string, model string) (Agent, error) {
	switch provider {
	case "openai":
		return NewOpenAILLM(model), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, model)
	case "ollama":
		return NewOllamaLLM(model)
	case "anthropic", "claude":
		return NewAnthropicLLM(model), nil
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// NewEmbeddingProvider returns the Embedder for a provider name. Anthropic
// exposes no embedding endpoint, so it is not accepted here.
func NewEmbeddingProvider(ctx context.Context, provider string, model string) (Embedder, error) {
	switch provider {
	case "openai":
		return NewOpenAILLM(model), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, model)
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("provider %s has no embedding support", provider)
	}
}
