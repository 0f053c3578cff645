package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/analysis"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/utils"
)

var (
	descOutputPath string
	descJSON       bool
	descSampleRows int
	descMaxRows    int
	descGroupBy    []string
	descCorr       bool
	descOutliers   bool
	descOutlierThr float64
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Profile the dataset: column kinds, statistics and groups",
	Example: `  zoogist describe
  zoogist describe --group-by habitat --correlations
  zoogist describe --dataset s3://bucket/mammals.csv --output summary.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.DefaultOptions()
		if descSampleRows > 0 {
			opt.SampleRows = descSampleRows
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MaxRows = descMaxRows
		}
		opt.GroupBy = descGroupBy
		opt.Correlations = descCorr
		opt.Outliers = descOutliers
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}

		sess := buildSession(cmd.Context(), cfg, serviceOptions{})
		name := "dataset"
		if cfg != nil && cfg.DatasetPath != "" {
			name = cfg.DatasetPath
		}
		rep := analysis.Profile(name, sess.store, opt)

		var out []byte
		if descJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			out = b
		} else {
			out = []byte(rep.Markdown())
		}
		if descOutputPath == "" {
			fmt.Println(string(out))
			return nil
		}
		if err := utils.SafeWriteFile(descOutputPath, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		pterm.Success.Printfln("Wrote profile to %s", descOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the profile")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "emit the profile as JSON instead of Markdown")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().IntVar(&descMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
