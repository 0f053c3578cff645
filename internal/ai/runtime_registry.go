package ai

import "time"

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	// Common
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Groq, OpenRouter
	APIKey string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

// init registers built-in runtimes.
func init() {
	RegisterRuntime(ProviderGroq, func(c RuntimeConfig) Runtime {
		c = c.withDefaults(3, 500*time.Millisecond, 4*time.Second)
		return NewGroqClient(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime {
		c = c.withDefaults(3, 500*time.Millisecond, 4*time.Second)
		return NewClient(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		c = c.withDefaults(2, 200*time.Millisecond, time.Second)
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
}

func (c RuntimeConfig) withDefaults(retryMax int, baseDelay, maxDelay time.Duration) RuntimeConfig {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 60 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = retryMax
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = baseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = maxDelay
	}
	return c
}
