package ai

import "context"

// Runtime is implemented by chat completion backends such as Groq,
// OpenRouter and a local Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Providers lists the registered provider names in display order.
var Providers = []string{ProviderGroq, ProviderOpenRouter, ProviderOllama}

// APIKeyEnv returns the environment variable holding provider's API key, or
// "" for providers that need none.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	}
	return ""
}
