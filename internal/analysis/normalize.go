package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// MaxRadarSuburbs is the number of polygons a radar chart can overlay.
const MaxRadarSuburbs = 3

// ErrTooManySuburbs is returned when more than MaxRadarSuburbs are requested.
var ErrTooManySuburbs = errors.New("too many suburbs for radar chart")

// Normalize min-max scales values to [0,1]. NaN stays NaN. When every present
// value is equal the range is zero and those values map to 0.
func Normalize(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case span == 0:
			// flat column: 0 (center of the radar), not 0/0
			out[i] = 0
		default:
			out[i] = (v - lo) / span
		}
	}
	return out
}

// RadarProfile is one suburb's normalized metric vector.
type RadarProfile struct {
	Suburb string
	Values []float64 // aligned with the metrics passed to RadarProfiles
}

// RadarProfiles normalizes each metric over the whole of ds and picks the
// first row of each named suburb. With no names it takes the first
// MaxRadarSuburbs distinct suburbs.
func RadarProfiles(ds *dataset.Dataset, names []string, metrics []dataset.Metric) ([]RadarProfile, error) {
	if len(names) == 0 {
		names = ds.SuburbNames()
		if len(names) > MaxRadarSuburbs {
			names = names[:MaxRadarSuburbs]
		}
	}
	if len(names) > MaxRadarSuburbs {
		return nil, fmt.Errorf("%w: %d requested, at most %d", ErrTooManySuburbs, len(names), MaxRadarSuburbs)
	}
	rowIdx := make([]int, len(names))
	for i, name := range names {
		rowIdx[i] = -1
		for k, row := range ds.Rows {
			if row.Name == name {
				rowIdx[i] = k
				break
			}
		}
		if rowIdx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", dataset.ErrNotFound, name)
		}
	}
	norm := make([][]float64, len(metrics))
	for j, m := range metrics {
		norm[j] = Normalize(ds.Column(m))
	}
	out := make([]RadarProfile, len(names))
	for i, name := range names {
		vals := make([]float64, len(metrics))
		for j := range metrics {
			vals[j] = norm[j][rowIdx[i]]
		}
		out[i] = RadarProfile{Suburb: name, Values: vals}
	}
	return out, nil
}
