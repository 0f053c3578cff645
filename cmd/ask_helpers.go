package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	cfgpkg "github.com/ShruAgarwal/Zoogist-Insights/internal/config"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/logging"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/tools"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

// normalizeProvider maps user spellings onto a registered provider name.
func normalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local", "ollama":
		return ai.ProviderOllama
	case "openrouter", "openai", "anthropic", "google", "gemini", "meta":
		return ai.ProviderOpenRouter
	case "", "groq", "llama":
		return ai.ProviderGroq
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// resolveProvider returns the provider from the flag, then config, then groq.
func resolveProvider(cfg *cfgpkg.Global, flag string) string {
	if strings.TrimSpace(flag) != "" {
		return normalizeProvider(flag)
	}
	if cfg != nil && cfg.DefaultProvider != "" {
		return normalizeProvider(cfg.DefaultProvider)
	}
	return ai.ProviderGroq
}

// apiKeyFor prefers the provider's environment variable over config api_key.
func apiKeyFor(provider string, cfg *cfgpkg.Global) string {
	if env := ai.APIKeyEnv(provider); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if cfg != nil {
		return cfg.APIKey
	}
	return ""
}

var errNoAPIKey = errors.New("no API key configured")

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := resolveProvider(cfg, opts.ProviderFlag)
	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKeyFor(providerName, cfg),
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			host = os.Getenv("ZOOGIST_OLLAMA_HOST")
		}
		if host == "" && cfg != nil && cfg.OllamaHost != "" {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
		if v := os.Getenv("ZOOGIST_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		}
	} else if rc.APIKey == "" {
		return nil, providerName, fmt.Errorf("%w: set %s or api_key in ~/.zoogist/config.yaml", errNoAPIKey, ai.APIKeyEnv(providerName))
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers, "|"))
	}
	return client, providerName, nil
}

// selectModel picks the explicit model, then the configured model when it
// belongs to provider, then the provider default.
func selectModel(cfg *cfgpkg.Global, provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		if cfg.DefaultProvider == "" || normalizeProvider(cfg.DefaultProvider) == provider {
			return cfg.DefaultModel
		}
	}
	return ai.DefaultModel(provider)
}

// resolveModelPreset interprets --model-preset as <tier> or <provider>:<tier>.
func resolveModelPreset(preset, provider string) (string, error) {
	tier := preset
	if p, t, ok := strings.Cut(preset, ":"); ok {
		provider, tier = normalizeProvider(p), strings.TrimSpace(t)
	}
	if name, ok := ai.RecommendModel(provider, tier); ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown --model-preset: %s (use cheap|balanced|quality or <provider>:<tier>)", preset)
}

// loadStore opens the configured dataset. A load failure is logged and
// yields an empty store so the session stays usable.
func loadStore(ctx context.Context, cfg *cfgpkg.Global) *dataset.Store {
	src := "data/mammals-sample.csv"
	s3cfg := dataset.S3Config{}
	if cfg != nil {
		if cfg.DatasetPath != "" {
			src = cfg.DatasetPath
		}
		s3cfg = dataset.S3Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint, PathStyle: cfg.S3PathStyle}
	}
	store, err := dataset.Open(ctx, src, s3cfg)
	if err != nil {
		logging.L().Error("dataset load failed", zap.String("source", src), zap.Error(err))
		pterm.Warning.Printfln("Could not load dataset %s: %v", src, err)
		return dataset.Empty()
	}
	logging.L().Debug("dataset loaded", zap.String("source", src), zap.Int("rows", store.Len()))
	return store
}

type serviceOptions struct {
	Runtime     runtimeOptions
	Model       string
	MaxTokens   int
	Temperature float64
	// WithAgent builds the tool-calling agent. Commands that never ask
	// questions leave it off.
	WithAgent bool
	Registry  prometheus.Registerer
}

type session struct {
	svc      *insights.Service
	store    *dataset.Store
	provider string
	model    string
	// agentErr explains why no agent was built.
	agentErr error
}

func buildSession(ctx context.Context, cfg *cfgpkg.Global, opts serviceOptions) *session {
	log := logging.L()
	store := loadStore(ctx, cfg)
	table := sqlexec.DefaultTable
	maxIter := agent.DefaultMaxIterations
	if cfg != nil {
		if cfg.TableName != "" {
			table = cfg.TableName
		}
		if cfg.AgentMaxIterations > 0 {
			maxIter = cfg.AgentMaxIterations
		}
	}
	execOpts := []sqlexec.Option{sqlexec.WithTable(table), sqlexec.WithLogger(log)}
	if opts.Registry != nil {
		execOpts = append(execOpts, sqlexec.WithMetrics(sqlexec.NewMetrics(opts.Registry)))
	}
	executor := sqlexec.New(store, execOpts...)

	s := &session{store: store}
	var ag agent.Agent
	if opts.WithAgent {
		rt, provider, err := buildRuntime(cfg, opts.Runtime)
		s.provider = provider
		if err != nil {
			s.agentErr = err
			log.Warn("agent unavailable", zap.Error(err))
		} else {
			s.model = selectModel(cfg, provider, opts.Model)
			maxTokens, temp := opts.MaxTokens, opts.Temperature
			if maxTokens <= 0 && cfg != nil {
				maxTokens = cfg.MaxTokens
			}
			if temp <= 0 && cfg != nil {
				temp = cfg.Temperature
			}
			reg := tools.NewRegistry(tools.NewSQLQuery(executor, executor.Table()))
			ag = agent.NewToolLoop(rt, reg, agent.Config{
				Model:         s.model,
				SystemPrompt:  agent.SystemPrompt(executor.Table()),
				MaxIterations: maxIter,
				MaxTokens:     maxTokens,
				Temperature:   temp,
				Logger:        log,
			})
		}
	}
	s.svc = insights.New(store, executor, ag, log)
	return s
}

// explainAgentError turns transport failures into actionable hints.
func explainAgentError(err error, provider, model string) error {
	var (
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		tuErr   *ai.ToolUseError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.Is(err, agent.ErrMaxIterations):
		return fmt.Errorf("the model kept calling tools without answering; try rephrasing the question: %w", err)
	case errors.As(err, &unreach):
		if provider == ai.ProviderOllama {
			return fmt.Errorf("Ollama not reachable at %s. Ensure Ollama is running and the host is correct (ZOOGIST_OLLAMA_HOST or config 'ollama_host'): %w", unreach.Host, err)
		}
		return fmt.Errorf("endpoint unreachable. Check your network and provider settings: %w", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set %s or add api_key in config (~/.zoogist/config.yaml): %w", ai.APIKeyEnv(provider), err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		if provider == ai.ProviderOllama {
			return fmt.Errorf("local model not available (%s). Install it with 'ollama pull %s' or choose another model: %w", model, model, err)
		}
		return fmt.Errorf("model not found (%s). Verify the name with 'zoogist models show': %w", model, err)
	case errors.As(err, &tuErr):
		return fmt.Errorf("the model produced a malformed tool call; retry or pick a stronger model with --model-preset quality: %w", err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try reducing max-tokens: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	default:
		return fmt.Errorf("question failed: %w", err)
	}
}

// parseFilters turns repeated col=value flags into a chart filter map.
// Values for one column accumulate; "col=a,b" adds both.
func parseFilters(raw []string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := map[string][]string{}
	for _, f := range raw {
		col, vals, ok := strings.Cut(f, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --filter %q (use column=value)", f)
		}
		for _, v := range strings.Split(vals, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out[col] = append(out[col], v)
			}
		}
	}
	return out, nil
}
