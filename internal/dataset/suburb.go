package dataset

import (
	"encoding/json"
	"math"
	"strconv"
)

// Metric identifies one of the six numeric investor metrics shared by the
// heatmap and the radar chart.
type Metric int

const (
	InvestorScore Metric = iota
	GrowthGapIndex
	TenYearGrowth
	Yield
	BuyAffordability
	RentAffordability
)

// Metrics lists the investor metrics in heatmap/radar order.
var Metrics = []Metric{
	InvestorScore,
	GrowthGapIndex,
	TenYearGrowth,
	Yield,
	BuyAffordability,
	RentAffordability,
}

var metricColumns = map[Metric]string{
	InvestorScore:     "Investor Score (Out Of 100)",
	GrowthGapIndex:    "Growth Gap Index",
	TenYearGrowth:     "10 Year Growth",
	Yield:             "Yield",
	BuyAffordability:  "Buy Affordability (Years)",
	RentAffordability: "Rent Affordability (% Of Income)",
}

var metricLabels = map[Metric]string{
	InvestorScore:     "Investor Score",
	GrowthGapIndex:    "Growth Gap Index",
	TenYearGrowth:     "10 Year Growth",
	Yield:             "Yield",
	BuyAffordability:  "Buy Affordability",
	RentAffordability: "Rent Affordability",
}

// Column returns the dataset header the metric is read from.
func (m Metric) Column() string { return metricColumns[m] }

// Label returns the short display name.
func (m Metric) Label() string { return metricLabels[m] }

func (m Metric) String() string { return m.Label() }

// Suburb is one row of the dataset. Missing numbers are NaN and missing
// strings are empty.
type Suburb struct {
	Name              string
	State             string
	PropertyType      string
	InvestorScore     float64
	TenYearGrowth     float64
	GrowthGapIndex    float64
	Yield             float64
	BuyAffordability  float64
	RentAffordability float64
	Latitude          float64
	Longitude         float64
}

// Value returns the metric's value for this row.
func (s Suburb) Value(m Metric) float64 {
	switch m {
	case InvestorScore:
		return s.InvestorScore
	case GrowthGapIndex:
		return s.GrowthGapIndex
	case TenYearGrowth:
		return s.TenYearGrowth
	case Yield:
		return s.Yield
	case BuyAffordability:
		return s.BuyAffordability
	case RentAffordability:
		return s.RentAffordability
	}
	return math.NaN()
}

// HasLocation reports whether both coordinates are present.
func (s Suburb) HasLocation() bool {
	return !math.IsNaN(s.Latitude) && !math.IsNaN(s.Longitude)
}

// MarshalJSON encodes NaN metrics as null; encoding/json rejects NaN.
func (s Suburb) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Suburb            string   `json:"suburb"`
		State             string   `json:"state"`
		PropertyType      string   `json:"property_type"`
		InvestorScore     *float64 `json:"investor_score"`
		TenYearGrowth     *float64 `json:"ten_year_growth"`
		GrowthGapIndex    *float64 `json:"growth_gap_index"`
		Yield             *float64 `json:"yield"`
		BuyAffordability  *float64 `json:"buy_affordability_years"`
		RentAffordability *float64 `json:"rent_affordability_pct_income"`
		Latitude          *float64 `json:"latitude"`
		Longitude         *float64 `json:"longitude"`
	}{
		Suburb:            s.Name,
		State:             s.State,
		PropertyType:      s.PropertyType,
		InvestorScore:     Nullable(s.InvestorScore),
		TenYearGrowth:     Nullable(s.TenYearGrowth),
		GrowthGapIndex:    Nullable(s.GrowthGapIndex),
		Yield:             Nullable(s.Yield),
		BuyAffordability:  Nullable(s.BuyAffordability),
		RentAffordability: Nullable(s.RentAffordability),
		Latitude:          Nullable(s.Latitude),
		Longitude:         Nullable(s.Longitude),
	})
}

// Nullable returns nil for NaN/Inf and a pointer to v otherwise.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatValue prints v in its shortest round-trip form, or "nan" when missing.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Field is one line of the detail panel.
type Field struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Display joins value and unit, e.g. "5.2%" or "11 yrs".
func (f Field) Display() string { return f.Value + f.Unit }

func (f Field) String() string { return f.Label + ": " + f.Display() }

// Detail returns the fixed investor fields shown for a selected suburb.
func Detail(s Suburb) []Field {
	return []Field{
		{Icon: "💰", Label: "Investor Score", Value: FormatValue(s.InvestorScore)},
		{Icon: "📈", Label: "10 Year Growth", Value: FormatValue(s.TenYearGrowth), Unit: "%"},
		{Icon: "🔥", Label: "Growth Gap Index", Value: FormatValue(s.GrowthGapIndex)},
		{Icon: "💸", Label: "Yield", Value: FormatValue(s.Yield), Unit: "%"},
		{Icon: "🧮", Label: "Buy Affordability", Value: FormatValue(s.BuyAffordability), Unit: " yrs"},
		{Icon: "📉", Label: "Rent Affordability", Value: FormatValue(s.RentAffordability), Unit: "%"},
	}
}
