package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SELECT over the sightings table without a model",
	Example: `  zoogist query "SELECT speciesName, SUM(count) AS total FROM mammals_df GROUP BY speciesName"
  zoogist query --json "SELECT * FROM mammals_df WHERE habitat = 'Evergreen'"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := buildSession(cmd.Context(), cfg, serviceOptions{})
		res := sess.svc.Query(cmd.Context(), sqlexec.Raw(args[0]))
		if queryJSON {
			fmt.Println(res.JSON())
		} else {
			printResult(res)
		}
		if res.Failed() {
			return errors.New(res.Message)
		}
		return nil
	},
}

func printResult(res sqlexec.Result) {
	switch {
	case res.Failed():
		pterm.Error.Println(res.Message)
		return
	case !res.OK():
		pterm.Info.Println(res.Message)
		return
	}
	cols := res.ColumnNames()
	data := pterm.TableData{cols}
	for i := 0; i < res.Len(); i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			v, _ := res.Value(i, c)
			row[j] = cell(v)
		}
		data = append(data, row)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Success.Printfln("%s (%d rows)", res.Message, res.Len())
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the tool-shaped JSON result")
}
