// Package render draws the dashboard charts as PNG images.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Colormap interpolates linearly between evenly spaced anchor colors.
type Colormap []drawing.Color

// At maps t in [0,1] to a color; t is clamped.
func (c Colormap) At(t float64) drawing.Color {
	if len(c) == 0 {
		return drawing.ColorBlack
	}
	if math.IsNaN(t) || t <= 0 {
		return c[0]
	}
	if t >= 1 {
		return c[len(c)-1]
	}
	pos := t * float64(len(c)-1)
	i := int(pos)
	w := pos - float64(i)
	a, b := c[i], c[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x)*(1-w) + float64(y)*w)) }
	return drawing.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// Coolwarm is the diverging blue–grey–red map used for correlations.
var Coolwarm = Colormap{
	drawing.ColorFromHex("3b4cc0"),
	drawing.ColorFromHex("8db0fe"),
	drawing.ColorFromHex("dddddd"),
	drawing.ColorFromHex("f49a7b"),
	drawing.ColorFromHex("b40426"),
}

// Viridis is the sequential map used for investor scores.
var Viridis = Colormap{
	drawing.ColorFromHex("440154"),
	drawing.ColorFromHex("482878"),
	drawing.ColorFromHex("3e4989"),
	drawing.ColorFromHex("31688e"),
	drawing.ColorFromHex("26828e"),
	drawing.ColorFromHex("1f9e89"),
	drawing.ColorFromHex("35b779"),
	drawing.ColorFromHex("6ece58"),
	drawing.ColorFromHex("fde725"),
}

// isDark reports whether white text reads better than black on c.
func isDark(c drawing.Color) bool {
	lum := 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
	return lum < 0.408*255
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.SetStrokeWidth(0)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

// textCentered draws body centered on (cx, cy).
func textCentered(r chart.Renderer, body string, cx, cy int) {
	b := r.MeasureText(body)
	r.Text(body, cx-b.Width()/2, cy+b.Height()/2)
}

// wrapText splits body into lines no wider than width.
func wrapText(r chart.Renderer, body string, width int) []string {
	words := strings.Fields(body)
	var lines []string
	cur := ""
	for _, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if cur != "" && r.MeasureText(next).Width() > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func setFont(r chart.Renderer, size float64, c drawing.Color) error {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(f)
	r.SetFontSize(size)
	r.SetFontColor(c)
	return nil
}

// toRGBA copies img into a drawable RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// drawLabel writes text with the 7x13 bitmap face; (x, y) is the baseline start.
func drawLabel(dst *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}}
	d.DrawString(text)
}

func labelWidth(text string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(text).Ceil()
}

// drawColorbar paints a vertical gradient in rect, low values at the bottom,
// with the two end labels to its right.
func drawColorbar(dst *image.RGBA, rect image.Rectangle, cm Colormap, lo, hi string) {
	h := rect.Dy()
	for y := 0; y < h; y++ {
		t := 1 - float64(y)/float64(max(h-1, 1))
		c := cm.At(t)
		draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y+y, rect.Max.X, rect.Min.Y+y+1), image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}), image.Point{}, draw.Src)
	}
	ink := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	drawLabel(dst, rect.Max.X+4, rect.Min.Y+10, hi, ink)
	drawLabel(dst, rect.Max.X+4, rect.Max.Y, lo, ink)
}
