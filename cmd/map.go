package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/geo"
	"github.com/KaramelBytes/suburbscope/internal/render"
	"github.com/KaramelBytes/suburbscope/internal/utils"
)

var (
	mapFilters filterFlags
	mapOutput  string
	mapGeoJSON string
	mapShp     string
	mapWidth   int
	mapHeight  int
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Plot the filtered suburbs by location, colored by investor score",
	Long: `Plot the filtered suburbs by longitude and latitude. Dot color follows the
investor score and dot size the growth gap index.

--geojson and --shp additionally export the plotted points for use in GIS tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		c, sel, err := mapFilters.apply(cmd, ds)
		if err != nil {
			return err
		}
		opt := mapOptions()
		if mapWidth > 0 {
			opt.Width = mapWidth
		}
		if mapHeight > 0 {
			opt.Height = mapHeight
		}
		out := mapOutput
		if out == "" {
			out = utils.OutputPath(cfg.OutputDir, render.MapFileName)
		}
		if err := utils.WriteRendered(out, func(w io.Writer) error {
			return render.Map(w, sel, opt)
		}); err != nil {
			return fmt.Errorf("map (%s): %w", describe(c), err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Wrote map of %d suburbs to %s\n", len(render.MapPoints(sel)), out)

		if mapGeoJSON != "" {
			b, err := json.MarshalIndent(geo.Features(sel), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal geojson: %w", err)
			}
			if err := utils.SafeWriteFile(mapGeoJSON, b); err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote GeoJSON to %s\n", mapGeoJSON)
		}
		if mapShp != "" {
			n, err := geo.WriteShapefile(mapShp, sel)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote shapefile with %d points to %s\n", n, mapShp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapFilters.register(mapCmd)
	mapCmd.Flags().StringVarP(&mapOutput, "output", "o", "", "PNG output path (default <output_dir>/"+render.MapFileName+")")
	mapCmd.Flags().StringVar(&mapGeoJSON, "geojson", "", "also write the points as a GeoJSON FeatureCollection")
	mapCmd.Flags().StringVar(&mapShp, "shp", "", "also write the points as an ESRI shapefile (.shp path)")
	mapCmd.Flags().IntVar(&mapWidth, "width", 0, "image width in pixels (overrides config)")
	mapCmd.Flags().IntVar(&mapHeight, "height", 0, "image height in pixels (overrides config)")
}
