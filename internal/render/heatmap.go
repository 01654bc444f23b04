package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/suburbscope/internal/analysis"
)

// HeatmapFileName is the download name of the exported heatmap.
const HeatmapFileName = "heatmap_raw_investor_metrics.png"

// HeatmapOptions controls heatmap size and labelling.
type HeatmapOptions struct {
	Width  int
	Height int
	Title  string
}

// DefaultHeatmapOptions matches a 10x6 inch figure at 100 dpi.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{Width: 1000, Height: 600}
}

// Heatmap renders cm as an annotated grid on a coolwarm scale over [-1, 1].
// Undefined (NaN) cells are left blank.
func Heatmap(w io.Writer, cm *analysis.CorrMatrix, opt HeatmapOptions) error {
	if cm == nil || cm.Size() == 0 {
		return ErrNoData
	}
	def := DefaultHeatmapOptions()
	if opt.Width <= 0 {
		opt.Width = def.Width
	}
	if opt.Height <= 0 {
		opt.Height = def.Height
	}
	r, err := chart.PNG(opt.Width, opt.Height)
	if err != nil {
		return fmt.Errorf("heatmap renderer: %w", err)
	}
	fillRect(r, 0, 0, opt.Width, opt.Height, drawing.ColorWhite)

	top, bottom, left, right := 20, 80, 210, 110
	if opt.Title != "" {
		top = 50
	}
	n := cm.Size()
	cellW := (opt.Width - left - right) / n
	cellH := (opt.Height - top - bottom) / n
	if cellW <= 0 || cellH <= 0 {
		return fmt.Errorf("heatmap: %dx%d is too small for %d columns", opt.Width, opt.Height, n)
	}

	ink := drawing.Color{R: 40, G: 40, B: 40, A: 255}
	if opt.Title != "" {
		if err := setFont(r, 14, ink); err != nil {
			return fmt.Errorf("heatmap font: %w", err)
		}
		textCentered(r, opt.Title, left+cellW*n/2, top/2)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x0, y0 := left+j*cellW, top+i*cellH
			v := cm.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			c := Coolwarm.At((v + 1) / 2)
			fillRect(r, x0, y0, x0+cellW, y0+cellH, c)
			fg := drawing.ColorBlack
			if isDark(c) {
				fg = drawing.ColorWhite
			}
			if err := setFont(r, 11, fg); err != nil {
				return fmt.Errorf("heatmap font: %w", err)
			}
			textCentered(r, fmt.Sprintf("%.2f", v), x0+cellW/2, y0+cellH/2)
		}
	}

	if err := setFont(r, 9, ink); err != nil {
		return fmt.Errorf("heatmap font: %w", err)
	}
	for i, name := range cm.Columns {
		// row labels, right-aligned against the grid
		lines := wrapText(r, name, left-16)
		lh := r.MeasureText("Ag").Height() + 3
		y := top + i*cellH + cellH/2 - (len(lines)-1)*lh/2
		for k, line := range lines {
			b := r.MeasureText(line)
			r.Text(line, left-8-b.Width(), y+k*lh+b.Height()/2)
		}
		// column labels, wrapped under each column
		lines = wrapText(r, name, cellW-6)
		for k, line := range lines {
			textCentered(r, line, left+i*cellW+cellW/2, top+n*cellH+14+k*lh)
		}
	}

	// color bar
	barX := left + n*cellW + 30
	barTop, barBottom := top, top+n*cellH
	steps := barBottom - barTop
	for k := 0; k < steps; k++ {
		t := 1 - float64(k)/float64(max(steps-1, 1))
		fillRect(r, barX, barTop+k, barX+20, barTop+k+1, Coolwarm.At(t))
	}
	if err := setFont(r, 9, ink); err != nil {
		return fmt.Errorf("heatmap font: %w", err)
	}
	for _, tick := range []float64{1, 0.5, 0, -0.5, -1} {
		y := barTop + int(math.Round((1-(tick+1)/2)*float64(steps-1)))
		label := fmt.Sprintf("%.1f", tick)
		b := r.MeasureText(label)
		r.Text(label, barX+26, y+b.Height()/2)
	}

	return r.Save(w)
}
