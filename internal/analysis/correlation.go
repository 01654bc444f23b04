package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// CorrMatrix holds a symmetric Pearson correlation matrix. Cells without
// enough paired observations, or with a constant column, are NaN.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
	N       [][]int     // paired observations behind each cell
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
	N    int
}

// pairAcc accumulates co-moments with Welford updates so that a column paired
// with itself yields exactly 1.
type pairAcc struct {
	n            int
	meanX, meanY float64
	m2x, m2y     float64
	cxy          float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	dx := x - p.meanX
	p.meanX += dx / float64(p.n)
	dy := y - p.meanY
	p.meanY += dy / float64(p.n)
	p.m2x += dx * (x - p.meanX)
	p.m2y += dy * (y - p.meanY)
	p.cxy += dx * (y - p.meanY)
}

func (p *pairAcc) r() float64 {
	if p.n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt(p.m2x * p.m2y)
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	r := p.cxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Correlate computes pairwise-complete Pearson correlations among metrics:
// a row missing either value is skipped for that pair only.
func Correlate(ds *dataset.Dataset, metrics []dataset.Metric) *CorrMatrix {
	n := len(metrics)
	cols := make([][]float64, n)
	names := make([]string, n)
	for i, m := range metrics {
		cols[i] = ds.Column(m)
		names[i] = m.Column()
	}
	cm := &CorrMatrix{Columns: names, Values: make([][]float64, n), N: make([][]int, n)}
	for i := range cm.Values {
		cm.Values[i] = make([]float64, n)
		cm.N[i] = make([]int, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			var pa pairAcc
			for k := range cols[a] {
				x, y := cols[a][k], cols[b][k]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				pa.add(x, y)
			}
			r := pa.r()
			cm.Values[a][b], cm.Values[b][a] = r, r
			cm.N[a][b], cm.N[b][a] = pa.n, pa.n
		}
	}
	return cm
}

// Size returns the number of columns.
func (c *CorrMatrix) Size() int { return len(c.Columns) }

// TopPairs returns up to limit off-diagonal pairs ordered by |r|, NaN skipped.
func (c *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := c.Size()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := c.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: c.Columns[i], B: c.Columns[j], R: r, N: c.N[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// Nullable returns Values with NaN replaced by nil, for JSON encoding.
func (c *CorrMatrix) Nullable() [][]*float64 {
	out := make([][]*float64, len(c.Values))
	for i, row := range c.Values {
		out[i] = make([]*float64, len(row))
		for j, v := range row {
			out[i][j] = dataset.Nullable(v)
		}
	}
	return out
}

// Markdown renders the matrix as a table followed by the strongest pairs.
func (c *CorrMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("[CORRELATION MATRIX]\n")
	b.WriteString("| |")
	for _, name := range c.Columns {
		b.WriteString(" ")
		b.WriteString(safeVal(name))
		b.WriteString(" |")
	}
	b.WriteString("\n|---|")
	for range c.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, name := range c.Columns {
		b.WriteString("| ")
		b.WriteString(safeVal(name))
		b.WriteString(" |")
		for j := range c.Columns {
			b.WriteString(" ")
			b.WriteString(formatR(c.Values[i][j]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	if pairs := c.TopPairs(10); len(pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", p.A, p.B, p.R, p.N))
		}
	}
	return b.String()
}

func formatR(r float64) string {
	if math.IsNaN(r) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", r)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
