package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/render"
	"github.com/KaramelBytes/suburbscope/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the investor dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(ds, serverOptions())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func serverOptions() server.Options {
	return server.Options{
		Title:        cfg.Title,
		ScoreMin:     cfg.ScoreMin,
		ScoreMax:     cfg.ScoreMax,
		RadarSuburbs: cfg.RadarSuburbs,
		Map:          mapOptions(),
		Heatmap:      render.HeatmapOptions{Width: cfg.HeatmapWidth, Height: cfg.HeatmapHeight},
		Radar:        render.RadarOptions{Size: cfg.RadarSize, Title: render.DefaultRadarOptions().Title},
	}
}

func mapOptions() render.MapOptions {
	opt := render.DefaultMapOptions()
	if cfg.MapWidth > 0 {
		opt.Width = cfg.MapWidth
	}
	if cfg.MapHeight > 0 {
		opt.Height = cfg.MapHeight
	}
	return opt
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}
