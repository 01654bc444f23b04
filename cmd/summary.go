package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
	"github.com/KaramelBytes/suburbscope/internal/utils"
)

var (
	sumFilters     filterFlags
	sumOutputPath  string
	sumSampleRows  int
	sumCorr        bool
	sumOutliers    bool
	sumOutlierThr  float64
	sumTopCategory int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Profile the dataset and produce a concise Markdown summary",
	Long: `Profile the dataset and produce a concise Markdown summary: per-metric
statistics with missing-value and outlier counts, state and property-type
breakdowns, metric correlations and sample rows.

The whole file is profiled unless a filter flag is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		scope := ""
		if sumFilters.changed(cmd) {
			c, sel, err := sumFilters.apply(cmd, ds)
			if err != nil {
				return err
			}
			ds, scope = sel, describe(c)
		}

		opt := analysis.DefaultOptions()
		if sumSampleRows >= 0 {
			opt.SampleRows = sumSampleRows
		}
		opt.Correlations = sumCorr
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = sumOutliers
		}
		if sumOutlierThr > 0 {
			opt.OutlierThreshold = sumOutlierThr
		}
		if sumTopCategory > 0 {
			opt.TopCategories = sumTopCategory
		}
		md := analysis.Summarize(ds, scope, opt).Markdown()

		// Decide where to write: --output path or stdout
		if sumOutputPath != "" {
			if err := utils.SafeWriteFile(sumOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	sumFilters.register(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	summaryCmd.Flags().IntVar(&sumSampleRows, "sample-rows", 5, "number of sample rows to include")
	summaryCmd.Flags().BoolVar(&sumCorr, "correlations", true, "include the metric correlation matrix")
	summaryCmd.Flags().BoolVar(&sumOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	summaryCmd.Flags().Float64Var(&sumOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	summaryCmd.Flags().IntVar(&sumTopCategory, "top-categories", 8, "maximum states and property types listed")
}
