package cmd

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/mapview"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

var mapOut string

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Export sightings as GeoJSON coloured by conservation status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := buildSession(cmd.Context(), cfg, serviceOptions{})
		fc := mapview.Build(sess.store)
		b, err := utils.PrettyJSON(fc)
		if err != nil {
			return err
		}
		if mapOut == "" {
			fmt.Println(string(b))
			return nil
		}
		if err := utils.SafeWriteFile(mapOut, b); err != nil {
			return err
		}
		counts := mapview.CountByColor(fc)
		colors := make([]string, 0, len(counts))
		for c := range counts {
			colors = append(colors, c)
		}
		sort.Strings(colors)
		items := make([]pterm.BulletListItem, len(colors))
		for i, c := range colors {
			items[i] = pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("%s: %d", c, counts[c])}
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()
		pterm.Success.Printfln("Wrote %d sightings to %s", len(fc.Features), mapOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringVarP(&mapOut, "out", "o", "", "write GeoJSON to this path instead of stdout")
}
