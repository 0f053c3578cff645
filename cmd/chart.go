package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/chart"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

var (
	chartType    string
	chartX       string
	chartY       string
	chartColor   string
	chartFilters []string
	chartSQL     string
	chartOut     string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Build an interactive chart from the dataset",
	Example: `  zoogist chart --type pie_chart --x speciesName --y count --filter habitat=Evergreen --out pie.html
  zoogist chart --type bar_chart --x date --y count --color place --out by-year.html
  zoogist chart --type bar_chart --x place --y total --sql "SELECT place, SUM(count) AS total FROM mammals_df GROUP BY place"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(chartFilters)
		if err != nil {
			return err
		}
		req := chart.Request{
			Type:    chart.Type(chartType),
			X:       chartX,
			Y:       chartY,
			Color:   chartColor,
			Filters: filters,
		}

		sess := buildSession(cmd.Context(), cfg, serviceOptions{})
		var resp insights.ChartResponse
		if chartSQL != "" {
			res := sess.svc.Query(cmd.Context(), sqlexec.Raw(chartSQL))
			if !res.OK() {
				return errors.New(res.Message)
			}
			resp = sess.svc.VisualizeResult(res, req)
		} else {
			resp = sess.svc.Visualize(req)
		}
		if resp.Chart == nil {
			return errors.New(resp.Message)
		}

		c := resp.Chart
		pterm.DefaultSection.Println(c.Title)
		pterm.Info.Printfln("%s by %s over %d rows", c.Y, c.X, c.Rows)
		if chartOut == "" {
			out, err := chart.JSON(c)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		if err := writeChart(c, chartOut); err != nil {
			return err
		}
		pterm.Success.Printfln("Saved chart to %s", chartOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartType, "type", string(chart.Bar), "chart type: bar_chart|pie_chart|line_chart|scatter_plot")
	chartCmd.Flags().StringVar(&chartX, "x", "", "x-axis column")
	chartCmd.Flags().StringVar(&chartY, "y", "", "y-axis column")
	chartCmd.Flags().StringVar(&chartColor, "color", "", "optional column to colour/group by")
	chartCmd.Flags().StringArrayVar(&chartFilters, "filter", nil, "keep rows where column=value (repeatable; value may be a comma list)")
	chartCmd.Flags().StringVar(&chartSQL, "sql", "", "chart the result of this query instead of the full dataset")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "write the chart to this path (.html page or .json option); prints the option when empty")
}
