package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

var schemaPrompt bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the table schema the model queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := sqlexec.DefaultTable
		if cfg != nil && cfg.TableName != "" {
			table = cfg.TableName
		}
		if schemaPrompt {
			prompt := agent.SystemPrompt(table)
			fmt.Println(prompt)
			pterm.FgGray.Printfln("System prompt ≈%d tokens", utils.CountTokens(prompt))
			return nil
		}
		data := pterm.TableData{{"Column", "Type", "Description"}}
		for _, c := range dataset.Schema {
			data = append(data, []string{c.Name, c.DocType, c.Description})
		}
		pterm.DefaultSection.Println("Table " + table)
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaPrompt, "prompt", false, "print the full system prompt sent to the model")
}
