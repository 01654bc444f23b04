// Package server serves the investor dashboard and its chart and JSON endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/filter"
	"github.com/KaramelBytes/suburbscope/internal/logging"
	"github.com/KaramelBytes/suburbscope/internal/render"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// Options configure the dashboard.
type Options struct {
	Title        string
	ScoreMin     float64
	ScoreMax     float64
	RadarSuburbs []string
	Map          render.MapOptions
	Heatmap      render.HeatmapOptions
	Radar        render.RadarOptions
}

// Server holds the loaded dataset; every request re-runs filter and render
// against it, so there is no per-client state.
type Server struct {
	ds     *dataset.Dataset
	opt    Options
	router *mux.Router
}

// New builds a server over ds with its routes registered.
func New(ds *dataset.Dataset, opt Options) *Server {
	if opt.Title == "" {
		opt.Title = "Investors score"
	}
	s := &Server{ds: ds, opt: opt}
	h := &handler{srv: s}

	r := mux.NewRouter()
	r.Use(requestID, accessLog)
	r.HandleFunc("/", h.Dashboard).Methods("GET")
	r.HandleFunc("/map.png", h.MapPNG).Methods("GET")
	r.HandleFunc("/heatmap.png", h.HeatmapPNG).Methods("GET")
	r.HandleFunc("/radar.png", h.RadarPNG).Methods("GET")
	r.HandleFunc("/api/suburbs", h.ListSuburbs).Methods("GET")
	r.HandleFunc("/api/suburbs/{name}", h.GetSuburb).Methods("GET")
	r.HandleFunc("/api/correlation", h.Correlation).Methods("GET")
	r.HandleFunc("/api/geojson", h.GeoJSON).Methods("GET")
	r.HandleFunc("/health", h.ReportHealth).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sendError(w, "not found", http.StatusNotFound)
	})
	s.router = r
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// defaultCriteria is the sidebar state before the user touches it.
func (s *Server) defaultCriteria() filter.Criteria {
	c := filter.Default(s.ds)
	if s.opt.ScoreMin != 0 || s.opt.ScoreMax != 0 {
		c.ScoreMin, c.ScoreMax = s.opt.ScoreMin, s.opt.ScoreMax
	}
	return c
}

// Run listens on addr until ctx is cancelled, then drains connections for up
// to ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Infof("dashboard listening on http://%s (%d suburbs)", addr, s.ds.Len())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logging.Infof("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
