package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/suburbscope/internal/config"
	"github.com/KaramelBytes/suburbscope/internal/filter"
	"github.com/KaramelBytes/suburbscope/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Suburbscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "title: %s\n", cfg.Title)
		fmt.Fprintf(out, "score_min: %g\n", cfg.ScoreMin)
		fmt.Fprintf(out, "score_max: %g\n", cfg.ScoreMax)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "map_width: %d\n", cfg.MapWidth)
		fmt.Fprintf(out, "map_height: %d\n", cfg.MapHeight)
		fmt.Fprintf(out, "heatmap_width: %d\n", cfg.HeatmapWidth)
		fmt.Fprintf(out, "heatmap_height: %d\n", cfg.HeatmapHeight)
		fmt.Fprintf(out, "radar_size: %d\n", cfg.RadarSize)
		if len(cfg.RadarSuburbs) > 0 {
			fmt.Fprintf(out, "radar_suburbs: %s\n", strings.Join(cfg.RadarSuburbs, ", "))
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

radar_suburbs takes a comma-separated list of up to three suburbs; an empty
value restores the default (the first three suburbs in the file).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Persist the file's values, not flag overrides applied on top of them.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_path":
			c.DataPath = val
		case "title":
			c.Title = val
		case "score_min", "score_max":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < filter.ScoreFloor || f > filter.ScoreCeil {
				return fmt.Errorf("invalid %s: %v (use %d..%d)", key, val, filter.ScoreFloor, filter.ScoreCeil)
			}
			if key == "score_min" {
				c.ScoreMin = f
			} else {
				c.ScoreMax = f
			}
			if c.ScoreMin > c.ScoreMax {
				return fmt.Errorf("%w: score_min %g > score_max %g", filter.ErrInvalidRange, c.ScoreMin, c.ScoreMax)
			}
		case "listen_addr":
			c.ListenAddr = val
		case "output_dir":
			c.OutputDir = val
		case "map_width", "map_height", "heatmap_width", "heatmap_height", "radar_size":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			switch key {
			case "map_width":
				c.MapWidth = i
			case "map_height":
				c.MapHeight = i
			case "heatmap_width":
				c.HeatmapWidth = i
			case "heatmap_height":
				c.HeatmapHeight = i
			case "radar_size":
				c.RadarSize = i
			}
		case "radar_suburbs":
			names := splitList(val)
			if len(names) > 3 {
				return fmt.Errorf("radar_suburbs takes at most 3 suburbs, got %d", len(names))
			}
			c.RadarSuburbs = names
		case "log_level":
			if err := logging.SetLevel(val); err != nil {
				return err
			}
			c.LogLevel = strings.ToLower(strings.TrimSpace(val))
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
