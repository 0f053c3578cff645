package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	cfgpkg "github.com/ShruAgarwal/Zoogist-Insights/internal/config"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Zoogist configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		data := pterm.TableData{{"Key", "Value"}}
		for _, kv := range configPairs(cfg) {
			data = append(data, []string{kv[0], kv[1]})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func configPairs(c *cfgpkg.Global) [][2]string {
	return [][2]string{
		{"api_key", mask(c.APIKey)},
		{"default_provider", c.DefaultProvider},
		{"default_model", c.DefaultModel},
		{"max_tokens", strconv.Itoa(c.MaxTokens)},
		{"temperature", strconv.FormatFloat(c.Temperature, 'f', 3, 64)},
		{"dataset_path", c.DatasetPath},
		{"table_name", c.TableName},
		{"agent_max_iterations", strconv.Itoa(c.AgentMaxIterations)},
		{"http_timeout_sec", strconv.Itoa(c.HTTPTimeoutSec)},
		{"retry_max_attempts", strconv.Itoa(c.RetryMaxAttempts)},
		{"retry_base_delay_ms", strconv.Itoa(c.RetryBaseDelayMs)},
		{"retry_max_delay_ms", strconv.Itoa(c.RetryMaxDelayMs)},
		{"ollama_host", c.OllamaHost},
		{"ollama_timeout_sec", strconv.Itoa(c.OllamaTimeoutSec)},
		{"s3_region", c.S3Region},
		{"s3_endpoint", c.S3Endpoint},
		{"s3_path_style", strconv.FormatBool(c.S3PathStyle)},
		{"serve_addr", c.ServeAddr},
		{"log_level", c.LogLevel},
		{"log_json", strconv.FormatBool(c.LogJSON)},
	}
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		pterm.Success.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		return b, nil
	}
	var err error
	switch key {
	case "api_key":
		c.APIKey = val
	case "default_model":
		c.DefaultModel = val
	case "default_provider":
		p := normalizeProvider(val)
		if _, ok := ai.GetRuntime(p, ai.RuntimeConfig{}); !ok {
			return fmt.Errorf("invalid default_provider: %s (use %s)", val, strings.Join(ai.Providers, "|"))
		}
		c.DefaultProvider = p
	case "max_tokens":
		c.MaxTokens, err = atoi()
	case "temperature":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil {
			return fmt.Errorf("invalid float for temperature: %w", perr)
		}
		c.Temperature = f
	case "dataset_path":
		c.DatasetPath = val
	case "table_name":
		c.TableName = val
	case "agent_max_iterations":
		c.AgentMaxIterations, err = atoi()
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi()
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = atoi()
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = atoi()
	case "retry_max_delay_ms":
		c.RetryMaxDelayMs, err = atoi()
	case "ollama_host":
		c.OllamaHost = val
	case "ollama_timeout_sec":
		c.OllamaTimeoutSec, err = atoi()
	case "s3_region":
		c.S3Region = val
	case "s3_endpoint":
		c.S3Endpoint = val
	case "s3_path_style":
		c.S3PathStyle, err = parseBool()
	case "serve_addr":
		c.ServeAddr = val
	case "log_level":
		if _, perr := logging.ParseLevel(val); perr != nil {
			return perr
		}
		c.LogLevel = val
	case "log_json":
		c.LogJSON, err = parseBool()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
