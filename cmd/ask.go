package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/chart"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

var (
	askDemo        int
	askModel       string
	askModelPreset string
	askProvider    string
	askMaxTokens   int
	askTemp        float64
	askJSON        bool
	askShowSQL     bool
	askChartOut    string
	askOllamaHost  string
	askTimeoutSec  int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the sightings",
	Example: `  zoogist ask "How many Dhole sightings were recorded in Valparai?"
  zoogist ask --demo 2 --chart-out chart.html
  zoogist ask --provider ollama --model qwen2.5:7b "Which habitat has the most animals?"
  zoogist ask --model-preset groq:quality --json "Count sightings per year"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := insights.AskRequest{DemoIndex: askDemo}
		if len(args) == 1 {
			req.Question = args[0]
		}
		if _, ok := insights.ResolveQuestion(req); !ok {
			pterm.Warning.Println(insights.MsgEmptyQuestion)
			return nil
		}

		provider := resolveProvider(cfg, askProvider)
		model := askModel
		if askModelPreset != "" && model == "" {
			name, err := resolveModelPreset(askModelPreset, provider)
			if err != nil {
				return err
			}
			if p, _, ok := strings.Cut(askModelPreset, ":"); ok {
				askProvider = p
			}
			model = name
			if !askJSON {
				pterm.Info.Printfln("Selected model by preset %s: %s", askModelPreset, name)
			}
		}

		timeout := time.Duration(askTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		sess := buildSession(ctx, cfg, serviceOptions{
			Runtime:     runtimeOptions{ProviderFlag: askProvider, OllamaHost: askOllamaHost},
			Model:       model,
			MaxTokens:   askMaxTokens,
			Temperature: askTemp,
			WithAgent:   true,
		})
		if sess.agentErr != nil {
			return sess.agentErr
		}

		var spinner *pterm.SpinnerPrinter
		if !askJSON {
			spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Thinking with %s (%s) ...", sess.model, sess.provider))
		}
		resp := sess.svc.Ask(ctx, req)
		if spinner != nil {
			_ = spinner.Stop()
		}

		rendered, hasChart := sess.svc.RenderSuggestion(resp)
		if askJSON {
			out := map[string]any{
				"provider": sess.provider,
				"model":    sess.model,
				"answer":   resp,
			}
			if hasChart {
				out["chart"] = rendered
			}
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			printAnswer(resp, rendered, hasChart, sess.model)
		}

		if resp.Err != nil {
			return explainAgentError(resp.Err, sess.provider, sess.model)
		}
		if askChartOut != "" && hasChart && rendered.Chart != nil {
			if err := writeChart(rendered.Chart, askChartOut); err != nil {
				return err
			}
			if !askJSON {
				pterm.Success.Printfln("Saved chart to %s", askChartOut)
			}
		}
		return nil
	},
}

func printAnswer(resp insights.AskResponse, rendered insights.ChartResponse, hasChart bool, model string) {
	pterm.DefaultSection.Println(resp.Question)
	if askShowSQL {
		for _, c := range resp.Calls {
			pterm.FgGray.Printfln("→ %s %s", c.Name, c.Arguments)
		}
	}
	if resp.Error != "" {
		pterm.Error.Println(resp.Error)
		return
	}
	if resp.Text != "" {
		pterm.DefaultBox.WithTitle("Answer").Println(resp.Text)
	}
	if resp.Chart != nil {
		items := []pterm.BulletListItem{
			{Level: 0, Text: "chart: " + resp.Chart.Type},
			{Level: 0, Text: "x: " + resp.Chart.XAxis},
			{Level: 0, Text: "y: " + resp.Chart.YAxis},
		}
		if resp.Chart.GroupBy != "" {
			items = append(items, pterm.BulletListItem{Level: 0, Text: "group by: " + resp.Chart.GroupBy})
		}
		pterm.Info.Println("Suggested chart")
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	}
	if hasChart && rendered.Message != "" {
		pterm.Warning.Println(rendered.Message)
	}
	printUsage(resp.Usage, model)
}

func printUsage(u ai.Usage, model string) {
	if u.TotalTokens == 0 {
		return
	}
	line := fmt.Sprintf("Tokens: prompt %d, completion %d", u.PromptTokens, u.CompletionTokens)
	if cost, ok := ai.EstimateCostUSD(model, u.PromptTokens, u.CompletionTokens); ok && cost > 0 {
		line += fmt.Sprintf(" (~$%.4f)", cost)
	}
	pterm.FgGray.Println(line)
}

// writeChart saves c as an HTML page or, for .json paths, an ECharts option.
func writeChart(c *chart.Chart, path string) error {
	var (
		out string
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		out, err = chart.JSON(c)
	} else {
		out, err = chart.HTML(c)
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return utils.SafeWriteFile(path, []byte(out))
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askDemo, "demo", 0, fmt.Sprintf("use demo query 1-%d (a question argument takes precedence)", len(insights.DemoQueries)))
	askCmd.Flags().StringVar(&askModel, "model", "", "override model (default from config or provider)")
	askCmd.Flags().StringVar(&askModelPreset, "model-preset", "", "pick a model by tier: cheap|balanced|quality or <provider>:<tier>")
	askCmd.Flags().StringVar(&askProvider, "provider", "", fmt.Sprintf("model provider (%s)", strings.Join(ai.Providers, "|")))
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "max tokens per model response")
	askCmd.Flags().Float64Var(&askTemp, "temp", 0, "sampling temperature")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "emit the answer as JSON to stdout")
	askCmd.Flags().BoolVar(&askShowSQL, "show-sql", false, "print the tool calls made by the model")
	askCmd.Flags().StringVar(&askChartOut, "chart-out", "", "write the suggested chart to this path (.html or .json)")
	askCmd.Flags().StringVar(&askOllamaHost, "ollama-host", "", "override Ollama host (e.g., http://127.0.0.1:11434)")
	askCmd.Flags().IntVar(&askTimeoutSec, "timeout-sec", 180, "request timeout in seconds")
}
