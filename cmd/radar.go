package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/render"
	"github.com/KaramelBytes/suburbscope/internal/utils"
)

var (
	radarOutput string
	radarSize   int
	radarTitle  string
)

var radarCmd = &cobra.Command{
	Use:   "radar [suburb...]",
	Short: "Radar chart comparing up to three suburbs on normalized metrics",
	Long: `Radar chart comparing up to three suburbs on min-max normalized metrics.

The whole file is used (no filters). Without names the first three suburbs in
the file are compared, unless radar_suburbs is set in the config.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		names := trimAll(args)
		if len(names) == 0 {
			names = cfg.RadarSuburbs
		}
		profiles, err := analysis.RadarProfiles(ds, names, dataset.Metrics)
		if err != nil {
			return err
		}
		labels := make([]string, len(dataset.Metrics))
		for i, m := range dataset.Metrics {
			labels[i] = m.Column()
		}
		opt := render.DefaultRadarOptions()
		if cfg.RadarSize > 0 {
			opt.Size = cfg.RadarSize
		}
		if radarSize > 0 {
			opt.Size = radarSize
		}
		if radarTitle != "" {
			opt.Title = radarTitle
		}
		out := radarOutput
		if out == "" {
			out = utils.OutputPath(cfg.OutputDir, render.RadarFileName)
		}
		if err := utils.WriteRendered(out, func(w io.Writer) error {
			return render.Radar(w, profiles, labels, opt)
		}); err != nil {
			return err
		}
		compared := make([]string, len(profiles))
		for i, p := range profiles {
			compared[i] = p.Suburb
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote radar chart (%s) to %s\n", strings.Join(compared, ", "), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(radarCmd)
	radarCmd.Flags().StringVarP(&radarOutput, "output", "o", "", "PNG output path (default <output_dir>/"+render.RadarFileName+")")
	radarCmd.Flags().IntVar(&radarSize, "size", 0, "image width and height in pixels (overrides config)")
	radarCmd.Flags().StringVar(&radarTitle, "title", "", "chart title")
}
