package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
)

var demosCmd = &cobra.Command{
	Use:   "demos",
	Short: "List the demo questions usable with 'ask --demo N'",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]pterm.BulletListItem, len(insights.DemoQueries))
		for i, q := range insights.DemoQueries {
			items[i] = pterm.BulletListItem{Level: 0, Text: q, Bullet: fmt.Sprintf("%d.", i+1)}
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

func init() {
	rootCmd.AddCommand(demosCmd)
}
