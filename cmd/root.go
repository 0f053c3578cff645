package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	cfgpkg "github.com/ShruAgarwal/Zoogist-Insights/internal/config"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/logging"
)

var (
	cfgFile string
	debug   bool
	logJSON bool
	// Dataset source (overrides config dataset_path)
	flagDataset string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "zoogist",
	Short: "Zoogist Insights: ask questions about mammal sightings",
	Long: `Zoogist Insights answers natural-language questions about a mammal-sighting
dataset. A language model writes SQL, runs it over an in-memory table through
the execute_sql_query tool, and summarizes the result with a chart suggestion.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.zoogist/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", "", "dataset CSV path or s3://bucket/key (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if f.Changed("dataset") && flagDataset != "" {
		cfg.DatasetPath = flagDataset
	}
	if f.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	setupLogging(cfg)

	if cfg.ModelsAutoSync && cfg.ModelsCatalogURL != "" {
		if err := fetchAndApplyCatalog(cfg.ModelsCatalogURL, cfg.ModelsMerge); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: models auto-sync failed: %v\n", err)
		}
	}
}

func setupLogging(c *cfgpkg.Global) {
	l, err := logging.New(c.LogLevel, c.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using warn level\n", err)
		l, _ = logging.New("warn", c.LogJSON)
	}
	logging.Set(l)
	logging.L().Debug("config loaded",
		zap.String("dataset", c.DatasetPath),
		zap.String("provider", c.DefaultProvider),
		zap.String("model", c.DefaultModel),
	)
}

// fetchAndApplyCatalog downloads a JSON catalog and applies it in-memory.
func fetchAndApplyCatalog(url string, merge bool) error {
	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	var m map[string]ai.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if merge {
		ai.MergeCatalog(m)
	} else {
		ai.OverrideCatalog(m)
	}
	return nil
}
