package ai

// PresetCatalog returns the built-in catalog entries for a known provider.
// The result can be merged into or replace the in-memory catalog.
func PresetCatalog(provider string) (map[string]ModelInfo, bool) {
	out := map[string]ModelInfo{}
	for name, mi := range builtinModels() {
		if mi.Provider == provider {
			out[name] = mi
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// RecommendModel returns a recommended tool-calling model for a provider and
// tier. If provider is empty, defaults to groq. Tiers: cheap|balanced|quality.
func RecommendModel(provider, tier string) (string, bool) {
	if provider == "" {
		provider = ProviderGroq
	}
	switch tier {
	case "cheap":
		switch provider {
		case ProviderGroq:
			return "llama-3.1-8b-instant", true
		case ProviderOpenRouter:
			return "meta-llama/llama-3.1-8b-instruct", true
		case ProviderOllama:
			return "llama3.1:8b", true
		}
	case "balanced":
		switch provider {
		case ProviderGroq:
			return "openai/gpt-oss-20b", true
		case ProviderOpenRouter:
			return "openai/gpt-4o-mini", true
		case ProviderOllama:
			return "qwen2.5:7b", true
		}
	case "quality":
		switch provider {
		case ProviderGroq:
			return "llama-3.3-70b-versatile", true
		case ProviderOpenRouter:
			return "openai/gpt-4.1-mini", true
		case ProviderOllama:
			return "mistral-nemo:latest", true
		}
	}
	return "", false
}
