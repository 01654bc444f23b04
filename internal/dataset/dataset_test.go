package dataset

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// The real export wraps "Property Type" across two lines inside quotes.
const sampleCSV = `Suburb,State,"Property
Type",Investor Score (Out Of 100),10 Year Growth,Growth Gap Index,Yield,Buy Affordability (Years),Rent Affordability (% Of Income),Latitude,Longitude
Ashgrove,QLD,House,78,5.25,12.5,4.1,9.5,28,-27.44,152.98
Bowral,NSW,House,55,3.0,4,3.2,12,31,-34.48,150.42
Ashgrove,QLD,Unit,64,4.5,8,5.0,7,25,-27.44,152.98
Carlton,VIC,Unit,,2.5%,,,,,-37.8,144.97
Dubbo,,House,81,"1,200",bad,6.3,6,22,,
`

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	p := filepath.Join(t.TempDir(), "investors.csv")
	if err := os.WriteFile(p, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ds
}

func TestLoadParsesRowsAndMultilineHeader(t *testing.T) {
	ds := loadSample(t)
	if ds.Name != "investors.csv" {
		t.Fatalf("name = %q", ds.Name)
	}
	if ds.Len() != 5 {
		t.Fatalf("rows = %d, want 5", ds.Len())
	}
	first := ds.Rows[0]
	if first.PropertyType != "House" || first.InvestorScore != 78 || first.TenYearGrowth != 5.25 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Latitude != -27.44 || first.Longitude != 152.98 {
		t.Fatalf("coordinates not parsed: %+v", first)
	}
	carlton := ds.Rows[3]
	if !math.IsNaN(carlton.InvestorScore) {
		t.Fatalf("empty score should be NaN, got %v", carlton.InvestorScore)
	}
	if carlton.TenYearGrowth != 2.5 {
		t.Fatalf("percent sign should be stripped, got %v", carlton.TenYearGrowth)
	}
	dubbo := ds.Rows[4]
	if dubbo.TenYearGrowth != 1200 {
		t.Fatalf("thousands separator not stripped: %v", dubbo.TenYearGrowth)
	}
	if !math.IsNaN(dubbo.GrowthGapIndex) || dubbo.HasLocation() {
		t.Fatalf("bad cell and blank coordinates should be missing: %+v", dubbo)
	}
	if len(ds.Warnings) != 1 || !strings.Contains(ds.Warnings[0], "1 non-numeric") {
		t.Fatalf("warnings = %v", ds.Warnings)
	}
}

func TestDistinctValuesKeepFirstSeenOrder(t *testing.T) {
	ds := loadSample(t)
	if got, want := ds.States(), []string{"QLD", "NSW", "VIC"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("States = %v, want %v", got, want)
	}
	if got, want := ds.PropertyTypes(), []string{"House", "Unit"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("PropertyTypes = %v, want %v", got, want)
	}
	if got, want := ds.SuburbNames(), []string{"Ashgrove", "Bowral", "Carlton", "Dubbo"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SuburbNames = %v, want %v", got, want)
	}
}

func TestLookupReturnsFirstMatch(t *testing.T) {
	ds := loadSample(t)
	row, err := ds.Lookup("Ashgrove")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if row.PropertyType != "House" {
		t.Fatalf("expected first Ashgrove row, got %+v", row)
	}
	if _, err := ds.Lookup("Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadMissingRequiredColumn(t *testing.T) {
	_, err := Read(strings.NewReader("Suburb,State\nA,QLD\n"), "x.csv")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "Property Type") {
		t.Fatalf("error should name the column: %v", err)
	}
}

func TestReadOptionalColumnsMissing(t *testing.T) {
	ds, err := Read(strings.NewReader("suburb,STATE,Property Type,Investor Score\nA,QLD,House,70\n"), "min.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ds.Rows[0].InvestorScore != 70 || !math.IsNaN(ds.Rows[0].Yield) {
		t.Fatalf("unexpected row: %+v", ds.Rows[0])
	}
	if len(ds.Warnings) != 7 {
		t.Fatalf("expected a warning per absent optional column, got %v", ds.Warnings)
	}
}

func TestLoadTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.tsv")
	body := "Suburb\tState\tProperty Type\tInvestor Score (Out Of 100)\nA\tWA\tUnit\t61\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Rows[0].State != "WA" || ds.Rows[0].InvestorScore != 61 {
		t.Fatalf("unexpected row: %+v", ds.Rows[0])
	}
}

func TestDetailFields(t *testing.T) {
	ds := loadSample(t)
	fields := Detail(ds.Rows[0])
	var lines []string
	for _, f := range fields {
		lines = append(lines, f.String())
	}
	want := []string{
		"Investor Score: 78",
		"10 Year Growth: 5.25%",
		"Growth Gap Index: 12.5",
		"Yield: 4.1%",
		"Buy Affordability: 9.5 yrs",
		"Rent Affordability: 28%",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("detail = %v, want %v", lines, want)
	}
	if got := Detail(ds.Rows[3])[0].Value; got != "nan" {
		t.Fatalf("missing score should print nan, got %q", got)
	}
}

func TestSuburbJSONEncodesMissingAsNull(t *testing.T) {
	ds := loadSample(t)
	b, err := json.Marshal(ds.Rows[3])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"investor_score":null`) || !strings.Contains(s, `"ten_year_growth":2.5`) {
		t.Fatalf("unexpected json: %s", s)
	}
}
