package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/filter"
	"github.com/KaramelBytes/suburbscope/internal/geo"
	"github.com/KaramelBytes/suburbscope/internal/logging"
	"github.com/KaramelBytes/suburbscope/internal/render"
)

type handler struct {
	srv *Server
}

// HealthReport is returned by /health.
type HealthReport struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

// ErrorResponse reports an error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SuburbList is the body of /api/suburbs.
type SuburbList struct {
	Criteria filter.Criteria  `json:"criteria"`
	Count    int              `json:"count"`
	Suburbs  []dataset.Suburb `json:"suburbs"`
}

// SuburbDetail is the body of /api/suburbs/{name}.
type SuburbDetail struct {
	Suburb dataset.Suburb  `json:"suburb"`
	Fields []dataset.Field `json:"fields"`
}

// CorrelationResponse is the body of /api/correlation. Undefined cells are null.
type CorrelationResponse struct {
	Columns []string          `json:"columns"`
	Values  [][]*float64      `json:"values"`
	N       [][]int           `json:"n"`
	Top     []CorrelationPair `json:"top_pairs"`
	Rows    int               `json:"rows"`
}

type CorrelationPair struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
	N int     `json:"n"`
}

func (h *handler) ReportHealth(w http.ResponseWriter, req *http.Request) {
	sendJSON(w, HealthReport{Status: "ok", Rows: h.srv.ds.Len()})
}

// filtered parses the sidebar criteria from the query and applies them.
// On a bad query it writes a 400 and returns ok=false.
func (h *handler) filtered(w http.ResponseWriter, req *http.Request) (filter.Criteria, *dataset.Dataset, bool) {
	c, err := filter.FromQuery(req.URL.Query(), h.srv.defaultCriteria())
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return c, nil, false
	}
	return c, filter.Apply(h.srv.ds, c), true
}

// ListSuburbs returns the filtered rows.
func (h *handler) ListSuburbs(w http.ResponseWriter, req *http.Request) {
	c, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	rows := ds.Rows
	if rows == nil {
		rows = []dataset.Suburb{}
	}
	sendJSON(w, SuburbList{Criteria: c, Count: len(rows), Suburbs: rows})
}

// GetSuburb returns the detail panel of the first filtered row named {name}.
func (h *handler) GetSuburb(w http.ResponseWriter, req *http.Request) {
	_, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	name := mux.Vars(req)["name"]
	row, err := ds.Lookup(name)
	if err != nil {
		sendError(w, fmt.Sprintf("no suburb %q in the current selection", name), http.StatusNotFound)
		return
	}
	sendJSON(w, SuburbDetail{Suburb: row, Fields: dataset.Detail(row)})
}

func (h *handler) Correlation(w http.ResponseWriter, req *http.Request) {
	_, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	cm := analysis.Correlate(ds, dataset.Metrics)
	resp := CorrelationResponse{
		Columns: cm.Columns,
		Values:  cm.Nullable(),
		N:       cm.N,
		Top:     []CorrelationPair{},
		Rows:    ds.Len(),
	}
	for _, p := range cm.TopPairs(5) {
		resp.Top = append(resp.Top, CorrelationPair{A: p.A, B: p.B, R: p.R, N: p.N})
	}
	sendJSON(w, resp)
}

func (h *handler) GeoJSON(w http.ResponseWriter, req *http.Request) {
	_, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(geo.Features(ds)); err != nil {
		logging.Errorf("encode geojson: %v", err)
	}
}

// MapPNG renders the location scatter for the current filters.
func (h *handler) MapPNG(w http.ResponseWriter, req *http.Request) {
	_, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Map(&buf, ds, h.srv.opt.Map); err != nil {
		h.renderFailed(w, req, "map", err)
		return
	}
	sendPNG(w, buf.Bytes(), "")
}

// HeatmapPNG renders the correlation heatmap; ?download=1 makes it an attachment.
func (h *handler) HeatmapPNG(w http.ResponseWriter, req *http.Request) {
	_, ds, ok := h.filtered(w, req)
	if !ok {
		return
	}
	if ds.Len() == 0 {
		sendError(w, "no suburbs match the current filters", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := render.Heatmap(&buf, analysis.Correlate(ds, dataset.Metrics), h.srv.opt.Heatmap); err != nil {
		h.renderFailed(w, req, "heatmap", err)
		return
	}
	attachment := ""
	if v := req.URL.Query().Get("download"); v != "" && v != "0" && v != "false" {
		attachment = render.HeatmapFileName
	}
	sendPNG(w, buf.Bytes(), attachment)
}

// RadarPNG compares up to three suburbs over the unfiltered dataset.
func (h *handler) RadarPNG(w http.ResponseWriter, req *http.Request) {
	names := req.URL.Query()["suburb"]
	if len(names) == 0 {
		names = h.srv.opt.RadarSuburbs
	}
	profiles, err := analysis.RadarProfiles(h.srv.ds, names, dataset.Metrics)
	switch {
	case errors.Is(err, analysis.ErrTooManySuburbs):
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, dataset.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.renderFailed(w, req, "radar", err)
		return
	}
	labels := make([]string, len(dataset.Metrics))
	for i, m := range dataset.Metrics {
		labels[i] = m.Column()
	}
	var buf bytes.Buffer
	if err := render.Radar(&buf, profiles, labels, h.srv.opt.Radar); err != nil {
		h.renderFailed(w, req, "radar", err)
		return
	}
	sendPNG(w, buf.Bytes(), "")
}

func (h *handler) renderFailed(w http.ResponseWriter, req *http.Request, what string, err error) {
	if errors.Is(err, render.ErrNoData) {
		sendError(w, fmt.Sprintf("nothing to plot for %s", what), http.StatusNotFound)
		return
	}
	logging.Errorf("render %s (id=%s): %v", what, RequestIDFrom(req.Context()), err)
	sendError(w, "server error", http.StatusInternalServerError)
}

func sendPNG(w http.ResponseWriter, b []byte, attachment string) {
	w.Header().Set("Content-Type", "image/png")
	if attachment != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
	}
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(b); err != nil {
		logging.Warnf("write png: %v", err)
	}
}

func sendError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Message: msg}); err != nil {
		logging.Errorf("encode error response: %v", err)
	}
}

func sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("encode response: %v", err)
	}
}
