package ai

import (
	"encoding/json"
	"os"
)

// Model metadata and simple pricing helpers for UX warnings. Every model
// listed supports tool calling. Prices are illustrative and should be checked
// against the provider's pricing page.

type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = builtinModels()

func builtinModels() map[string]ModelInfo {
	return map[string]ModelInfo{
		// Groq
		"llama-3.1-8b-instant": {
			Name:          "llama-3.1-8b-instant",
			Provider:      ProviderGroq,
			ContextTokens: 131072,
			InputPerK:     0.00005,
			OutputPerK:    0.00008,
		},
		"llama-3.3-70b-versatile": {
			Name:          "llama-3.3-70b-versatile",
			Provider:      ProviderGroq,
			ContextTokens: 131072,
			InputPerK:     0.00059,
			OutputPerK:    0.00079,
		},
		"openai/gpt-oss-20b": {
			Name:          "openai/gpt-oss-20b",
			Provider:      ProviderGroq,
			ContextTokens: 131072,
			InputPerK:     0.0001,
			OutputPerK:    0.0005,
		},
		// OpenRouter
		"openai/gpt-4o-mini": {
			Name:          "openai/gpt-4o-mini",
			Provider:      ProviderOpenRouter,
			ContextTokens: 128000,
			InputPerK:     0.00015,
			OutputPerK:    0.0006,
		},
		"openai/gpt-4.1-mini": {
			Name:          "openai/gpt-4.1-mini",
			Provider:      ProviderOpenRouter,
			ContextTokens: 1047576,
			InputPerK:     0.0004,
			OutputPerK:    0.0016,
		},
		"anthropic/claude-3.5-haiku": {
			Name:          "anthropic/claude-3.5-haiku",
			Provider:      ProviderOpenRouter,
			ContextTokens: 200000,
			InputPerK:     0.0008,
			OutputPerK:    0.004,
		},
		"meta-llama/llama-3.1-8b-instruct": {
			Name:          "meta-llama/llama-3.1-8b-instruct",
			Provider:      ProviderOpenRouter,
			ContextTokens: 131072,
			InputPerK:     0.00002,
			OutputPerK:    0.00003,
		},
		"google/gemini-2.0-flash-001": {
			Name:          "google/gemini-2.0-flash-001",
			Provider:      ProviderOpenRouter,
			ContextTokens: 1048576,
			InputPerK:     0.0001,
			OutputPerK:    0.0004,
		},
		// Local (Ollama) tags
		"llama3.1:8b": {
			Name:          "llama3.1:8b",
			Provider:      ProviderOllama,
			ContextTokens: 131072,
			InputPerK:     0.0,
			OutputPerK:    0.0,
		},
		"qwen2.5:7b": {
			Name:          "qwen2.5:7b",
			Provider:      ProviderOllama,
			ContextTokens: 32768,
			InputPerK:     0.0,
			OutputPerK:    0.0,
		},
		"mistral-nemo:latest": {
			Name:          "mistral-nemo:latest",
			Provider:      ProviderOllama,
			ContextTokens: 131072,
			InputPerK:     0.0,
			OutputPerK:    0.0,
		},
	}
}

// DefaultModel returns the model used when none is configured for provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderOllama:
		return "llama3.1:8b"
	default:
		return "llama-3.1-8b-instant"
	}
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// ---- Sync/override helpers ----

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "llama-3.1-8b-instant": {"Name":"llama-3.1-8b-instant","Provider":"groq","ContextTokens":131072,"InputPerK":0.00005,"OutputPerK":0.00008} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var m map[string]ModelInfo
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}
