package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/render"
	"github.com/KaramelBytes/suburbscope/internal/utils"
)

var (
	heatFilters  filterFlags
	heatOutput   string
	heatMarkdown bool
	heatTitle    string
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Correlation heatmap of the raw investor metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		c, sel, err := heatFilters.apply(cmd, ds)
		if err != nil {
			return err
		}
		if sel.Len() == 0 {
			return fmt.Errorf("%w: no suburbs match the filters (%s)", render.ErrNoData, describe(c))
		}
		cm := analysis.Correlate(sel, dataset.Metrics)
		out := heatOutput
		if out == "" {
			out = utils.OutputPath(cfg.OutputDir, render.HeatmapFileName)
		}
		opt := render.HeatmapOptions{Width: cfg.HeatmapWidth, Height: cfg.HeatmapHeight, Title: heatTitle}
		if err := utils.WriteRendered(out, func(w io.Writer) error {
			return render.Heatmap(w, cm, opt)
		}); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if heatMarkdown {
			fmt.Fprintln(w, cm.Markdown())
		}
		fmt.Fprintf(w, "✓ Wrote heatmap over %d suburbs to %s\n", sel.Len(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	heatFilters.register(heatmapCmd)
	heatmapCmd.Flags().StringVarP(&heatOutput, "output", "o", "", "PNG output path (default <output_dir>/"+render.HeatmapFileName+")")
	heatmapCmd.Flags().BoolVar(&heatMarkdown, "markdown", false, "also print the matrix and strongest pairs as Markdown")
	heatmapCmd.Flags().StringVar(&heatTitle, "title", "", "optional chart title")
}
