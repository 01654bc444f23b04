package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/filter"
	"github.com/KaramelBytes/suburbscope/internal/logging"
	"github.com/KaramelBytes/suburbscope/internal/render"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"selected": filter.Selected,
	"fmtScore": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/dashboard.html"))

type dashboardView struct {
	Title      string
	ScoreFloor int
	ScoreCeil  int
	Criteria   filter.Criteria
	States     []string
	Types      []string
	Count      int
	Located    int
	Names      []string
	Selected   string
	Detail     []dataset.Field
	Error      string

	MapURL      template.URL
	HeatmapURL  template.URL
	DownloadURL template.URL
	HeatmapFile string
}

// Dashboard renders the sidebar, the detail panel and the two charts.
// The chart images carry the same query so they reflect the same filters.
func (h *handler) Dashboard(w http.ResponseWriter, req *http.Request) {
	s := h.srv
	view := dashboardView{
		Title:       s.opt.Title,
		ScoreFloor:  filter.ScoreFloor,
		ScoreCeil:   filter.ScoreCeil,
		States:      s.ds.States(),
		Types:       s.ds.PropertyTypes(),
		HeatmapFile: render.HeatmapFileName,
	}
	status := http.StatusOK

	c, err := filter.FromQuery(req.URL.Query(), s.defaultCriteria())
	if err != nil {
		status = http.StatusBadRequest
		view.Error = err.Error()
		c = s.defaultCriteria()
	}
	view.Criteria = c
	ds := filter.Apply(s.ds, c)
	view.Count = ds.Len()
	for _, row := range ds.Rows {
		if row.HasLocation() {
			view.Located++
		}
	}
	view.Names = ds.SuburbNames()

	if len(view.Names) > 0 {
		view.Selected = view.Names[0]
		if want := req.URL.Query().Get("suburb"); want != "" {
			if _, err := ds.Lookup(want); err == nil {
				view.Selected = want
			}
		}
		if row, err := ds.Lookup(view.Selected); err == nil {
			view.Detail = dataset.Detail(row)
		}
	}

	q := c.Query().Encode()
	view.MapURL = template.URL("/map.png?" + q)
	view.HeatmapURL = template.URL("/heatmap.png?" + q)
	view.DownloadURL = template.URL("/heatmap.png?" + q + "&download=1")

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		logging.Errorf("render dashboard (id=%s): %v", RequestIDFrom(req.Context()), err)
		sendError(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
