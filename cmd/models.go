package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage or inspect model catalog and pricing",
	Example: `  zoogist models show
  zoogist models show --provider groq
  zoogist models sync --file ./models.json --merge
  zoogist models fetch --url https://example.com/models.json
  zoogist models fetch --provider ollama --merge --output models.json`,
}

var showProvider string

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := ai.Catalog()
		keys := make([]string, 0, len(cat))
		for k, mi := range cat {
			if showProvider != "" && mi.Provider != normalizeProvider(showProvider) {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		data := pterm.TableData{{"Model", "Provider", "Context", "In $/1K", "Out $/1K"}}
		for _, k := range keys {
			mi := cat[k]
			data = append(data, []string{
				k,
				mi.Provider,
				fmt.Sprintf("%d", mi.ContextTokens),
				fmt.Sprintf("%.5f", mi.InputPerK),
				fmt.Sprintf("%.5f", mi.OutputPerK),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var (
	syncPath  string
	syncMerge bool
)

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load model catalog/pricing from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(syncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		if syncMerge {
			ai.MergeCatalog(m)
			fmt.Println("Merged model catalog from file")
		} else {
			ai.OverrideCatalog(m)
			fmt.Println("Replaced model catalog from file")
		}
		return nil
	},
}

// providerURL returns a catalog URL configured for provider through
// ZOOGIST_<PROVIDER>_CATALOG_URL. Empty string if unset.
func providerURL(name string) string {
	switch name {
	case ai.ProviderGroq, ai.ProviderOpenRouter, ai.ProviderOllama:
		return os.Getenv("ZOOGIST_" + strings.ToUpper(name) + "_CATALOG_URL")
	default:
		return ""
	}
}

var (
	fetchURL      string
	fetchOutput   string
	fetchMerge    bool
	fetchProvider string
)

var modelsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch model catalog/pricing JSON from a URL and apply it",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetchProvider = strings.TrimSpace(fetchProvider)
		if fetchProvider != "" {
			fetchProvider = normalizeProvider(fetchProvider)
		}
		if fetchURL == "" && fetchProvider != "" {
			if u := providerURL(fetchProvider); u != "" {
				fetchURL = u
			}
		}
		// If no URL, but a known provider preset exists, apply it locally without network.
		if fetchURL == "" && fetchProvider != "" {
			if preset, ok := ai.PresetCatalog(fetchProvider); ok {
				if fetchMerge {
					ai.MergeCatalog(preset)
					fmt.Printf("Merged built-in '%s' preset into in-memory catalog\n", fetchProvider)
				} else {
					ai.OverrideCatalog(preset)
					fmt.Printf("Replaced in-memory catalog with built-in '%s' preset\n", fetchProvider)
				}
				// Optionally write to file
				if fetchOutput != "" {
					data, err := json.MarshalIndent(preset, "", "  ")
					if err != nil {
						return fmt.Errorf("marshal: %w", err)
					}
					if err := utils.SafeWriteFile(fetchOutput, data); err != nil {
						return fmt.Errorf("write file: %w", err)
					}
					fmt.Printf("Saved preset catalog to %s\n", fetchOutput)
				}
				return nil
			}
		}
		if fetchURL == "" {
			return fmt.Errorf("--url is required (or specify --provider with a known preset)")
		}
		client := &http.Client{Timeout: 20 * time.Second}
		resp, err := client.Get(fetchURL)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
		}
		dec := json.NewDecoder(resp.Body)
		var m map[string]ai.ModelInfo
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		// Optionally write to file
		if fetchOutput != "" {
			data, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			if err := utils.SafeWriteFile(fetchOutput, data); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			fmt.Printf("Saved catalog to %s\n", fetchOutput)
		}
		if fetchMerge {
			ai.MergeCatalog(m)
			fmt.Println("Merged fetched catalog into in-memory catalog")
		} else {
			ai.OverrideCatalog(m)
			fmt.Println("Replaced in-memory catalog with fetched catalog")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsCmd.AddCommand(modelsFetchCmd)

	modelsShowCmd.Flags().StringVar(&showProvider, "provider", "", "only show models of this provider")
	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
	modelsSyncCmd.Flags().BoolVar(&syncMerge, "merge", false, "merge into existing catalog instead of replacing")

	modelsFetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL to JSON catalog file")
	modelsFetchCmd.Flags().StringVar(&fetchOutput, "output", "", "optional path to save the fetched JSON")
	modelsFetchCmd.Flags().BoolVar(&fetchMerge, "merge", false, "merge into existing catalog instead of replacing")
	modelsFetchCmd.Flags().StringVar(&fetchProvider, "provider", "", "provider (groq|openrouter|ollama): uses ZOOGIST_<PROVIDER>_CATALOG_URL or the built-in preset when --url is not set")
}
