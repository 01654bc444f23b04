package filter

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

const (
	// ScoreFloor and ScoreCeil bound the investor-score slider.
	ScoreFloor = 0
	ScoreCeil  = 100

	DefaultScoreMin = 60
	DefaultScoreMax = 100
)

// ErrInvalidRange is returned when the score range is inverted or not a number.
var ErrInvalidRange = errors.New("invalid score range")

// Criteria is the sidebar state: an inclusive score range plus state and
// property-type selections. A nil or empty selection matches nothing.
type Criteria struct {
	ScoreMin float64  `json:"score_min"`
	ScoreMax float64  `json:"score_max"`
	States   []string `json:"states"`
	Types    []string `json:"property_types"`
}

// Default selects scores 60–100 and every state and property type in ds.
func Default(ds *dataset.Dataset) Criteria {
	return Criteria{
		ScoreMin: DefaultScoreMin,
		ScoreMax: DefaultScoreMax,
		States:   ds.States(),
		Types:    ds.PropertyTypes(),
	}
}

// Validate clamps the score range to the slider domain and rejects min > max.
func (c *Criteria) Validate() error {
	if math.IsNaN(c.ScoreMin) || math.IsNaN(c.ScoreMax) {
		return fmt.Errorf("%w: bounds must be numbers", ErrInvalidRange)
	}
	c.ScoreMin = clamp(c.ScoreMin)
	c.ScoreMax = clamp(c.ScoreMax)
	if c.ScoreMin > c.ScoreMax {
		return fmt.Errorf("%w: min %g > max %g", ErrInvalidRange, c.ScoreMin, c.ScoreMax)
	}
	return nil
}

// Match reports whether row passes all three predicates.
func (c Criteria) Match(row dataset.Suburb) bool {
	s := row.InvestorScore
	if math.IsNaN(s) || s < c.ScoreMin || s > c.ScoreMax {
		return false
	}
	return contains(c.States, row.State) && contains(c.Types, row.PropertyType)
}

// Apply returns the rows of ds matching c, in dataset order.
func Apply(ds *dataset.Dataset, c Criteria) *dataset.Dataset {
	var rows []dataset.Suburb
	for _, row := range ds.Rows {
		if c.Match(row) {
			rows = append(rows, row)
		}
	}
	return ds.Subset(rows)
}

// FromQuery builds criteria from URL query values, starting from def.
// score_min/score_max override the range; repeated state and type params
// replace the selections. A present-but-empty param ("state=") selects nothing.
func FromQuery(q url.Values, def Criteria) (Criteria, error) {
	c := def
	if v := strings.TrimSpace(q.Get("score_min")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, fmt.Errorf("%w: score_min %q", ErrInvalidRange, v)
		}
		c.ScoreMin = f
	}
	if v := strings.TrimSpace(q.Get("score_max")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, fmt.Errorf("%w: score_max %q", ErrInvalidRange, v)
		}
		c.ScoreMax = f
	}
	if vals, ok := q["state"]; ok {
		c.States = nonEmpty(vals)
	}
	if vals, ok := q["type"]; ok {
		c.Types = nonEmpty(vals)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Query encodes c so that FromQuery(c.Query(), anything) round-trips.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	q.Set("score_min", strconv.FormatFloat(c.ScoreMin, 'f', -1, 64))
	q.Set("score_max", strconv.FormatFloat(c.ScoreMax, 'f', -1, 64))
	if len(c.States) == 0 {
		q["state"] = []string{""}
	} else {
		q["state"] = append([]string(nil), c.States...)
	}
	if len(c.Types) == 0 {
		q["type"] = []string{""}
	} else {
		q["type"] = append([]string(nil), c.Types...)
	}
	return q
}

// Selected reports whether v is part of sel; templates use it for checkboxes.
func Selected(sel []string, v string) bool { return contains(sel, v) }

func contains(sel []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range sel {
		if s == v {
			return true
		}
	}
	return false
}

func nonEmpty(vals []string) []string {
	out := []string{}
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clamp(v float64) float64 {
	if v < ScoreFloor {
		return ScoreFloor
	}
	if v > ScoreCeil {
		return ScoreCeil
	}
	return v
}
