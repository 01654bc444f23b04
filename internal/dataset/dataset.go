package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNotFound is returned by Lookup when no row carries the name.
	ErrNotFound = errors.New("suburb not found")
)

// Dataset is the in-memory table. It is never mutated after Load.
type Dataset struct {
	Name     string
	Rows     []Suburb
	Warnings []string
}

type column int

const (
	colSuburb column = iota
	colState
	colPropertyType
	colInvestorScore
	colTenYearGrowth
	colGrowthGapIndex
	colYield
	colBuyAffordability
	colRentAffordability
	colLatitude
	colLongitude
	numColumns
)

// headers maps normalized header text to a column. "Property\nType" and
// "Property Type" normalize to the same key.
var headers = map[string]column{
	"suburb":                           colSuburb,
	"state":                            colState,
	"property type":                    colPropertyType,
	"investor score (out of 100)":      colInvestorScore,
	"investor score":                   colInvestorScore,
	"10 year growth":                   colTenYearGrowth,
	"growth gap index":                 colGrowthGapIndex,
	"yield":                            colYield,
	"buy affordability (years)":        colBuyAffordability,
	"rent affordability (% of income)": colRentAffordability,
	"latitude":                         colLatitude,
	"longitude":                        colLongitude,
}

var required = []struct {
	col  column
	name string
}{
	{colSuburb, "Suburb"},
	{colState, "State"},
	{colPropertyType, "Property Type"},
	{colInvestorScore, "Investor Score (Out Of 100)"},
}

// Load reads the dataset CSV (or TSV, by extension) at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = sniffDelimiter(path)
	return read(r, filepath.Base(path))
}

// Read parses comma-separated data from r. name labels the dataset in reports.
func Read(r io.Reader, name string) (*Dataset, error) {
	return read(csv.NewReader(r), name)
}

func read(r *csv.Reader, name string) (*Dataset, error) {
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make([]int, numColumns)
	for i := range idx {
		idx[i] = -1
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if c, ok := headers[normalizeHeader(h)]; ok && idx[c] < 0 {
			idx[c] = i
		}
	}
	for _, req := range required {
		if idx[req.col] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, req.name)
		}
	}

	ds := &Dataset{Name: name}
	bad := 0
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		cell := func(c column) string {
			i := idx[c]
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num := func(c column) float64 {
			v := cell(c)
			if v == "" {
				return math.NaN()
			}
			x, ok := parseNumeric(v)
			if !ok {
				bad++
				return math.NaN()
			}
			return x
		}
		ds.Rows = append(ds.Rows, Suburb{
			Name:              cell(colSuburb),
			State:             cell(colState),
			PropertyType:      cell(colPropertyType),
			InvestorScore:     num(colInvestorScore),
			TenYearGrowth:     num(colTenYearGrowth),
			GrowthGapIndex:    num(colGrowthGapIndex),
			Yield:             num(colYield),
			BuyAffordability:  num(colBuyAffordability),
			RentAffordability: num(colRentAffordability),
			Latitude:          num(colLatitude),
			Longitude:         num(colLongitude),
		})
	}
	for c := colInvestorScore; c < numColumns; c++ {
		if idx[c] < 0 {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("column %q not found; values treated as missing", columnName(c)))
		}
	}
	if bad > 0 {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("%d non-numeric cells treated as missing", bad))
	}
	return ds, nil
}

// Subset wraps rows taken from d. The rows are shared, not copied.
func (d *Dataset) Subset(rows []Suburb) *Dataset {
	return &Dataset{Name: d.Name, Rows: rows}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// States returns distinct non-empty states in first-seen order.
func (d *Dataset) States() []string {
	return d.distinct(func(s Suburb) string { return s.State })
}

// PropertyTypes returns distinct non-empty property types in first-seen order.
func (d *Dataset) PropertyTypes() []string {
	return d.distinct(func(s Suburb) string { return s.PropertyType })
}

// SuburbNames returns distinct non-empty suburb names in first-seen order.
func (d *Dataset) SuburbNames() []string {
	return d.distinct(func(s Suburb) string { return s.Name })
}

func (d *Dataset) distinct(key func(Suburb) string) []string {
	if d == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, row := range d.Rows {
		k := key(row)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Lookup returns the first row named name.
func (d *Dataset) Lookup(name string) (Suburb, error) {
	if d != nil {
		for _, row := range d.Rows {
			if row.Name == name {
				return row, nil
			}
		}
	}
	return Suburb{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Column returns the metric's values in row order, NaN included.
func (d *Dataset) Column(m Metric) []float64 {
	out := make([]float64, d.Len())
	for i, row := range d.Rows {
		out[i] = row.Value(m)
	}
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func columnName(c column) string {
	switch c {
	case colTenYearGrowth:
		return TenYearGrowth.Column()
	case colGrowthGapIndex:
		return GrowthGapIndex.Column()
	case colYield:
		return Yield.Column()
	case colBuyAffordability:
		return BuyAffordability.Column()
	case colRentAffordability:
		return RentAffordability.Column()
	case colLatitude:
		return "Latitude"
	case colLongitude:
		return "Longitude"
	}
	return InvestorScore.Column()
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumeric accepts plain floats plus the decorations spreadsheets export:
// "%" and "$" signs, thousands commas and non-breaking spaces.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.NewReplacer("%", "", "$", "", ",", "", " ", "", "\u00a0", "").Replace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
