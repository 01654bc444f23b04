package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// MapFileName is the default file name for the exported map.
const MapFileName = "suburb_map_investor_score.png"

const (
	minDot = 3.0
	maxDot = 12.0
)

// MapOptions controls the geo-scatter size and title.
type MapOptions struct {
	Width  int
	Height int
	Title  string
}

// DefaultMapOptions returns the dashboard map defaults.
func DefaultMapOptions() MapOptions {
	return MapOptions{Width: 900, Height: 500, Title: "Investor Score by Location"}
}

// MapPoint is one plotted suburb with its derived color and dot size.
type MapPoint struct {
	Suburb    dataset.Suburb
	Color     drawing.Color
	DotWidth  float64
	ScoreNorm float64
}

// MapPoints projects rows with coordinates onto plot styling: color from the
// investor score (viridis, scaled to the plotted min/max) and dot width from
// the growth gap index (area proportional to the value, negatives and NaN at
// the minimum size).
func MapPoints(ds *dataset.Dataset) []MapPoint {
	var rows []dataset.Suburb
	for _, row := range ds.Rows {
		if row.HasLocation() {
			rows = append(rows, row)
		}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	gapMax := 0.0
	for _, row := range rows {
		if !math.IsNaN(row.InvestorScore) {
			lo = math.Min(lo, row.InvestorScore)
			hi = math.Max(hi, row.InvestorScore)
		}
		if row.GrowthGapIndex > gapMax {
			gapMax = row.GrowthGapIndex
		}
	}
	out := make([]MapPoint, len(rows))
	for i, row := range rows {
		p := MapPoint{Suburb: row, DotWidth: minDot, ScoreNorm: math.NaN()}
		switch {
		case math.IsNaN(row.InvestorScore):
			p.Color = drawing.ColorFromHex("b0b0b0")
		case hi > lo:
			p.ScoreNorm = (row.InvestorScore - lo) / (hi - lo)
			p.Color = Viridis.At(p.ScoreNorm)
		default:
			p.ScoreNorm = 0.5
			p.Color = Viridis.At(0.5)
		}
		if gapMax > 0 && row.GrowthGapIndex > 0 {
			p.DotWidth = minDot + (maxDot-minDot)*math.Sqrt(row.GrowthGapIndex/gapMax)
		}
		out[i] = p
	}
	return out
}

// Map renders the filtered suburbs as a longitude/latitude scatter with a
// score color bar on the right.
func Map(w io.Writer, ds *dataset.Dataset, opt MapOptions) error {
	def := DefaultMapOptions()
	if opt.Width <= 0 {
		opt.Width = def.Width
	}
	if opt.Height <= 0 {
		opt.Height = def.Height
	}
	points := MapPoints(ds)
	if len(points) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Suburb.Longitude
		ys[i] = p.Suburb.Latitude
	}
	xr := paddedRange(xs)
	yr := paddedRange(ys)

	series := chart.ContinuousSeries{
		Name:    "Suburbs",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    minDot,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return points[index].Color
			},
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return points[index].DotWidth
			},
		},
	}
	ch := chart.Chart{
		Title:      opt.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 110, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Longitude", Range: xr},
		YAxis:      chart.YAxis{Name: "Latitude", Range: yr},
		Series:     []chart.Series{series},
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode map: %w", err)
	}
	rgba := toRGBA(img)

	lo, hi := scoreBounds(points)
	b := rgba.Bounds()
	bar := image.Rect(b.Max.X-80, b.Min.Y+60, b.Max.X-62, b.Max.Y-60)
	drawColorbar(rgba, bar, Viridis, dataset.FormatValue(lo), dataset.FormatValue(hi))
	caption := "Investor Score"
	drawLabel(rgba, b.Max.X-8-labelWidth(caption), b.Min.Y+50, caption, color.RGBA{R: 40, G: 40, B: 40, A: 255})

	if err := png.Encode(w, rgba); err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	return nil
}

func scoreBounds(points []MapPoint) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, p := range points {
		s := p.Suburb.InvestorScore
		if math.IsNaN(s) {
			continue
		}
		if math.IsNaN(lo) || s < lo {
			lo = s
		}
		if math.IsNaN(hi) || s > hi {
			hi = s
		}
	}
	return lo, hi
}

// paddedRange widens [min,max] by 5% (or ±0.5 when flat) so edge dots are not clipped.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
