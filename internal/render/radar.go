package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
)

// RadarFileName is the default output of the radar command.
const RadarFileName = "radar_chart_investor_metrics.png"

// RadarColors are assigned to profiles in order.
var RadarColors = []drawing.Color{
	drawing.ColorFromHex("FF5733"),
	drawing.ColorFromHex("2980B9"),
	drawing.ColorFromHex("27AE60"),
}

// RadarOptions controls the radar canvas. Size is the square edge in pixels;
// text and strokes scale as if the canvas were 8 inches wide.
type RadarOptions struct {
	Size  int
	Title string
}

// DefaultRadarOptions matches an 8x8 inch figure at 300 dpi.
func DefaultRadarOptions() RadarOptions {
	return RadarOptions{Size: 2400, Title: "Investment Metric Radar Chart"}
}

// RadarVertices returns the closed polygon for values on a radar of the given
// center and radius: axis k sits at angle 2πk/n counter-clockwise from
// 3 o'clock, and the first vertex is repeated at the end. NaN plots at the
// center.
func RadarVertices(values []float64, cx, cy, radius float64) [][2]float64 {
	n := len(values)
	pts := make([][2]float64, 0, n+1)
	for k, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		theta := 2 * math.Pi * float64(k) / float64(n)
		pts = append(pts, [2]float64{cx + v*radius*math.Cos(theta), cy - v*radius*math.Sin(theta)})
	}
	if n > 0 {
		pts = append(pts, pts[0])
	}
	return pts
}

// Radar overlays the profiles as filled polygons over axes labelled with labels.
func Radar(w io.Writer, profiles []analysis.RadarProfile, labels []string, opt RadarOptions) error {
	if len(profiles) == 0 || len(labels) < 3 {
		return ErrNoData
	}
	if len(profiles) > len(RadarColors) {
		return fmt.Errorf("%w: %d profiles", analysis.ErrTooManySuburbs, len(profiles))
	}
	if opt.Size <= 0 {
		opt.Size = DefaultRadarOptions().Size
	}
	size := opt.Size
	dpi := float64(size) / 8
	px := func(pt float64) float64 { return pt * dpi / 72 }

	r, err := chart.PNG(size, size)
	if err != nil {
		return fmt.Errorf("radar renderer: %w", err)
	}
	r.SetDPI(dpi)
	fillRect(r, 0, 0, size, size, drawing.ColorWhite)

	cx, cy := float64(size)/2, float64(size)*0.53
	radius := float64(size) * 0.32
	n := len(labels)
	grid := drawing.Color{R: 200, G: 200, B: 200, A: 255}
	ink := drawing.Color{R: 30, G: 30, B: 30, A: 255}

	// concentric grid at 0.2 steps, then the spokes
	r.SetStrokeColor(grid)
	r.SetStrokeWidth(px(0.8))
	for ring := 1; ring <= 5; ring++ {
		rr := radius * float64(ring) / 5
		const segs = 180
		for s := 0; s <= segs; s++ {
			a := 2 * math.Pi * float64(s) / segs
			x, y := int(cx+rr*math.Cos(a)), int(cy-rr*math.Sin(a))
			if s == 0 {
				r.MoveTo(x, y)
			} else {
				r.LineTo(x, y)
			}
		}
		r.Stroke()
	}
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		r.MoveTo(int(cx), int(cy))
		r.LineTo(int(cx+radius*math.Cos(theta)), int(cy-radius*math.Sin(theta)))
		r.Stroke()
	}

	for i, p := range profiles {
		c := RadarColors[i]
		pts := RadarVertices(p.Values, cx, cy, radius)
		trace := func() {
			for k, pt := range pts {
				if k == 0 {
					r.MoveTo(int(pt[0]), int(pt[1]))
				} else {
					r.LineTo(int(pt[0]), int(pt[1]))
				}
			}
		}
		r.SetFillColor(c.WithAlpha(64))
		r.SetStrokeColor(drawing.ColorTransparent)
		trace()
		r.Close()
		r.Fill()
		r.SetStrokeColor(c)
		r.SetStrokeWidth(px(2))
		trace()
		r.Stroke()
	}

	if err := setFont(r, 10, ink); err != nil {
		return fmt.Errorf("radar font: %w", err)
	}
	for k, label := range labels {
		theta := 2 * math.Pi * float64(k) / float64(n)
		lx := cx + radius*1.14*math.Cos(theta)
		ly := cy - radius*1.14*math.Sin(theta)
		lines := wrapText(r, label, int(float64(size)*0.22))
		lh := r.MeasureText("Ag").Height() + int(px(3))
		top := int(ly) - (len(lines)-1)*lh/2
		for j, line := range lines {
			textCentered(r, line, int(lx), top+j*lh)
		}
	}

	if opt.Title != "" {
		if err := setFont(r, 16, ink); err != nil {
			return fmt.Errorf("radar font: %w", err)
		}
		textCentered(r, opt.Title, size/2, int(px(36)))
	}

	// legend, upper right
	if err := setFont(r, 10, ink); err != nil {
		return fmt.Errorf("radar font: %w", err)
	}
	lh := int(px(18))
	lx := size - int(px(150))
	ly := int(px(70))
	for i, p := range profiles {
		y := ly + i*lh
		r.SetStrokeColor(RadarColors[i])
		r.SetStrokeWidth(px(2))
		r.MoveTo(lx, y)
		r.LineTo(lx+int(px(20)), y)
		r.Stroke()
		b := r.MeasureText(p.Suburb)
		r.Text(p.Suburb, lx+int(px(26)), y+b.Height()/2)
	}
	return r.Save(w)
}
