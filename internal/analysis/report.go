package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// Options controls dataset profiling.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Correlations computes the metric correlation matrix.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// TopCategories caps the state and property-type breakdowns.
	TopCategories int
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Correlations:     true,
		Outliers:         true,
		OutlierThreshold: 3.5,
		TopCategories:    8,
	}
}

// Report is a markdown-friendly profile of the investor dataset.
type Report struct {
	Name     string
	Rows     int
	Scope    string
	Metrics  []MetricSummary
	States   []CategoryCount
	Types    []CategoryCount
	Samples  []dataset.Suburb
	Corr     *CorrMatrix
	Warnings []string
}

// MetricSummary captures per-metric statistics.
type MetricSummary struct {
	Name    string
	NonNull int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
}

type CategoryCount struct {
	Value string
	Count int
}

// Summarize profiles ds. scope describes the filter that produced ds, if any.
func Summarize(ds *dataset.Dataset, scope string, opt Options) *Report {
	rep := &Report{Name: ds.Name, Rows: ds.Len(), Scope: scope}
	rep.Warnings = append(rep.Warnings, ds.Warnings...)

	for _, m := range dataset.Metrics {
		rep.Metrics = append(rep.Metrics, summarizeMetric(m.Column(), ds.Column(m), opt))
	}
	rep.States = countCategories(ds, func(s dataset.Suburb) string { return s.State }, opt.TopCategories)
	rep.Types = countCategories(ds, func(s dataset.Suburb) string { return s.PropertyType }, opt.TopCategories)

	sampleRows := opt.SampleRows
	if sampleRows > ds.Len() {
		sampleRows = ds.Len()
	}
	if sampleRows > 0 {
		rep.Samples = ds.Rows[:sampleRows]
	}
	if opt.Correlations && ds.Len() >= 2 {
		rep.Corr = Correlate(ds, dataset.Metrics)
	}
	if names := ds.SuburbNames(); len(names) < countNamed(ds) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows share a suburb name with an earlier row; lookups use the first", countNamed(ds)-len(names)))
	}
	return rep
}

func summarizeMetric(name string, vals []float64, opt Options) MetricSummary {
	s := MetricSummary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	var mean, m2 float64
	present := make([]float64, 0, len(vals))
	for _, x := range vals {
		if math.IsNaN(x) {
			s.Missing++
			continue
		}
		s.NonNull++
		present = append(present, x)
		// Welford update
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - mean
		mean += delta / float64(s.NonNull)
		m2 += delta * (x - mean)
	}
	if s.NonNull == 0 {
		s.Min, s.Max, s.Mean, s.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Mean = mean
	if s.NonNull > 1 {
		s.Std = math.Sqrt(m2 / float64(s.NonNull-1))
	}
	if opt.Outliers && len(present) >= 8 {
		median, mad := medianMAD(present)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		if mad > 0 {
			for _, v := range present {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					s.OutliersCount++
				}
				if az > s.OutliersMaxAbsZ {
					s.OutliersMaxAbsZ = az
				}
			}
		}
		s.OutlierThreshold = thr
	}
	return s
}

func countCategories(ds *dataset.Dataset, key func(dataset.Suburb) string, limit int) []CategoryCount {
	counts := map[string]int{}
	for _, row := range ds.Rows {
		if k := key(row); k != "" {
			counts[k]++
		}
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if limit > 0 && len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func countNamed(ds *dataset.Dataset) int {
	n := 0
	for _, row := range ds.Rows {
		if row.Name != "" {
			n++
		}
	}
	return n
}

// Markdown renders a compact report suitable for sharing or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Scope != "" {
		b.WriteString(fmt.Sprintf("Filter: %s\n", r.Scope))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))

	b.WriteString("\n[METRICS]\n")
	for _, m := range r.Metrics {
		total := m.NonNull + m.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(m.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s (non-null %d, missing %.1f%%)", m.Name, m.NonNull, missPct))
		if m.NonNull > 0 {
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", m.Min, m.Max, m.Mean, m.Std))
		}
		if m.OutlierThreshold > 0 {
			b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", m.OutliersCount, m.OutlierThreshold))
			if m.OutliersMaxAbsZ > 0 {
				b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", m.OutliersMaxAbsZ))
			}
		}
		b.WriteString("\n")
	}
	writeCategories(&b, "STATES", r.States)
	writeCategories(&b, "PROPERTY TYPES", r.Types)

	if r.Corr != nil {
		pairs := r.Corr.TopPairs(10)
		if len(pairs) > 0 {
			b.WriteString("\n[CORRELATIONS]\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
			}
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| Suburb | State | Property Type |")
		for _, m := range dataset.Metrics {
			b.WriteString(" ")
			b.WriteString(safeVal(m.Label()))
			b.WriteString(" |")
		}
		b.WriteString("\n|---|---|---|")
		for range dataset.Metrics {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |", safeVal(row.Name), safeVal(row.State), safeVal(row.PropertyType)))
			for _, m := range dataset.Metrics {
				b.WriteString(" ")
				b.WriteString(dataset.FormatValue(row.Value(m)))
				b.WriteString(" |")
			}
			b.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeCategories(b *strings.Builder, title string, cats []CategoryCount) {
	if len(cats) == 0 {
		return
	}
	b.WriteString("\n[" + title + "]\n")
	for _, c := range cats {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(c.Value), c.Count))
	}
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
