package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/logging"
	"github.com/KaramelBytes/suburbscope/internal/render"
)

const investorsCSV = `Suburb,State,Property Type,Investor Score (Out Of 100),10 Year Growth,Growth Gap Index,Yield,Buy Affordability (Years),Rent Affordability (% Of Income),Latitude,Longitude
Ashgrove,QLD,House,78,5.25,12.5,4.1,9.5,28,-27.44,152.98
Bowral,NSW,House,55,3.0,4,3.2,12,31,-34.48,150.42
Carlton,VIC,Unit,66,2.5,3,5.0,7,25,-37.8,144.97
Dubbo,NSW,House,81,4.0,9,6.3,6,22,-32.25,148.6
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logging.SetOutput(io.Discard)
	t.Cleanup(func() { logging.SetOutput(io.Discard) })
	ds, err := dataset.Read(strings.NewReader(investorsCSV), "investors.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return New(ds, Options{
		ScoreMin: 60,
		ScoreMax: 100,
		Map:      render.MapOptions{Width: 400, Height: 300},
		Heatmap:  render.HeatmapOptions{Width: 500, Height: 400},
		Radar:    render.RadarOptions{Size: 400},
	})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var h HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "ok" || h.Rows != 4 {
		t.Fatalf("health = %+v", h)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestListSuburbsDefaultFilter(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/suburbs")
	var body struct {
		Count   int `json:"count"`
		Suburbs []struct {
			Suburb string `json:"suburb"`
		} `json:"suburbs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Bowral (55) falls below the default 60 floor
	if body.Count != 3 || body.Suburbs[0].Suburb != "Ashgrove" || body.Suburbs[2].Suburb != "Dubbo" {
		t.Fatalf("unexpected list: %+v", body)
	}
}

func TestListSuburbsQueryFilters(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/suburbs?score_min=50&state=NSW")
	var body SuburbList
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Fatalf("count = %d", body.Count)
	}

	rec = get(t, s, "/api/suburbs?state=")
	if !strings.Contains(rec.Body.String(), `"suburbs":[]`) {
		t.Fatalf("empty state selection should match nothing: %s", rec.Body.String())
	}
}

func TestBadRangeIs400(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/api/suburbs?score_min=90&score_max=10", "/map.png?score_min=abc"} {
		rec := get(t, s, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		var e ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil || e.Message == "" {
			t.Fatalf("%s: error body %q", target, rec.Body.String())
		}
	}
}

func TestGetSuburbDetail(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/suburbs/Ashgrove")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var d struct {
		Fields []dataset.Field `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Fields) != 6 || d.Fields[0].Value != "78" || d.Fields[1].Display() != "5.25%" {
		t.Fatalf("fields = %+v", d.Fields)
	}

	// filtered out by the default score floor
	if rec := get(t, s, "/api/suburbs/Bowral"); rec.Code != http.StatusNotFound {
		t.Fatalf("filtered-out suburb status = %d", rec.Code)
	}
}

func TestCorrelationJSON(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/correlation")
	var c CorrelationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c.Columns) != 6 || len(c.Values) != 6 {
		t.Fatalf("matrix shape %d/%d", len(c.Columns), len(c.Values))
	}
	if c.Values[0][0] == nil || *c.Values[0][0] != 1 {
		t.Fatalf("diagonal = %v", c.Values[0][0])
	}
	if c.Rows != 3 {
		t.Fatalf("rows = %d", c.Rows)
	}

	rec = get(t, newTestServer(t), "/api/correlation?state=")
	if !strings.Contains(rec.Body.String(), "null") {
		t.Fatalf("empty selection should give null cells: %s", rec.Body.String())
	}
}

func TestGeoJSON(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/geojson")
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"FeatureCollection"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestMapPNG(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/map.png")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("size = %v", b)
	}

	if rec := get(t, s, "/map.png?type="); rec.Code != http.StatusNotFound {
		t.Fatalf("empty map status = %d", rec.Code)
	}
}

func TestHeatmapDownload(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/heatmap.png")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Disposition") != "" {
		t.Fatalf("inline heatmap: %d %q", rec.Code, rec.Header().Get("Content-Disposition"))
	}
	rec = get(t, s, "/heatmap.png?download=1")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, render.HeatmapFileName) {
		t.Fatalf("content disposition = %q", cd)
	}
	if rec := get(t, s, "/heatmap.png?score_min=99"); rec.Code != http.StatusNotFound {
		t.Fatalf("empty heatmap status = %d", rec.Code)
	}
}

func TestRadarPNG(t *testing.T) {
	s := newTestServer(t)
	if rec := get(t, s, "/radar.png"); rec.Code != http.StatusOK {
		t.Fatalf("default radar status = %d: %s", rec.Code, rec.Body.String())
	}
	// radar ignores the dashboard filters, so Bowral is available
	if rec := get(t, s, "/radar.png?suburb=Bowral&suburb=Dubbo"); rec.Code != http.StatusOK {
		t.Fatalf("named radar status = %d", rec.Code)
	}
	if rec := get(t, s, "/radar.png?suburb=Nowhere"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown suburb status = %d", rec.Code)
	}
	if rec := get(t, s, "/radar.png?suburb=A&suburb=B&suburb=C&suburb=D"); rec.Code != http.StatusBadRequest {
		t.Fatalf("too many suburbs status = %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/?suburb=Carlton")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Investor Details: Carlton",
		"Rent Affordability:</strong> 25%",
		"/map.png?",
		"download=1",
		`value="QLD" checked`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboardEmptySelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/?state=")
	body := rec.Body.String()
	if strings.Contains(body, "Investor Details") || strings.Contains(body, "/map.png") {
		t.Fatalf("empty selection should render no panel and no charts")
	}
	if !strings.Contains(body, "0 suburb(s)") {
		t.Fatalf("missing count line")
	}
}

func TestDashboardWithoutCoordinates(t *testing.T) {
	const noCoords = `Suburb,State,Property Type,Investor Score (Out Of 100),Latitude,Longitude
Ashgrove,QLD,House,78,,
Dubbo,NSW,House,81,-32.25,
`
	ds, err := dataset.Read(strings.NewReader(noCoords), "nocoords.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	logging.SetOutput(io.Discard)
	s := New(ds, Options{ScoreMin: 60, ScoreMax: 100})
	body := get(t, s, "/").Body.String()
	if strings.Contains(body, "/map.png") {
		t.Fatal("map image should be omitted when no row has coordinates")
	}
	if !strings.Contains(body, "2 suburb(s)") || !strings.Contains(body, "have coordinates") {
		t.Fatalf("unexpected dashboard:\n%s", body)
	}
	if rec := get(t, s, "/map.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("map status = %d", rec.Code)
	}
}

func TestDashboardBadQuery(t *testing.T) {
	rec := get(t, newTestServer(t), "/?score_min=80&score_max=20")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid score range") {
		t.Fatal("error message should be shown on the page")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
