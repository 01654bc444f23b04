package filter

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"testing"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

func fixture() *dataset.Dataset {
	return &dataset.Dataset{Name: "t.csv", Rows: []dataset.Suburb{
		{Name: "A", State: "QLD", PropertyType: "House", InvestorScore: 60},
		{Name: "B", State: "NSW", PropertyType: "Unit", InvestorScore: 100},
		{Name: "C", State: "QLD", PropertyType: "Unit", InvestorScore: 59.9},
		{Name: "D", State: "VIC", PropertyType: "House", InvestorScore: math.NaN()},
		{Name: "E", State: "", PropertyType: "House", InvestorScore: 80},
		{Name: "F", State: "NSW", PropertyType: "House", InvestorScore: 75},
	}}
}

func names(ds *dataset.Dataset) []string {
	var out []string
	for _, r := range ds.Rows {
		out = append(out, r.Name)
	}
	return out
}

func TestDefaultIsInclusiveAndDropsMissing(t *testing.T) {
	ds := fixture()
	got := names(Apply(ds, Default(ds)))
	want := []string{"A", "B", "F"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Apply(Default) = %v, want %v", got, want)
	}
}

func TestPredicatesCombineWithAnd(t *testing.T) {
	ds := fixture()
	c := Criteria{ScoreMin: 0, ScoreMax: 100, States: []string{"NSW"}, Types: []string{"House"}}
	if got := names(Apply(ds, c)); !reflect.DeepEqual(got, []string{"F"}) {
		t.Fatalf("got %v", got)
	}
}

func TestEmptySelectionMatchesNothing(t *testing.T) {
	ds := fixture()
	c := Default(ds)
	c.States = nil
	if n := Apply(ds, c).Len(); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestValidateClampsAndRejectsInverted(t *testing.T) {
	c := Criteria{ScoreMin: -5, ScoreMax: 140}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.ScoreMin != 0 || c.ScoreMax != 100 {
		t.Fatalf("not clamped: %+v", c)
	}
	c = Criteria{ScoreMin: 90, ScoreMax: 10}
	if err := c.Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestFromQuery(t *testing.T) {
	ds := fixture()
	def := Default(ds)

	c, err := FromQuery(url.Values{}, def)
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if !reflect.DeepEqual(c, def) {
		t.Fatalf("empty query should yield defaults: %+v", c)
	}

	q, _ := url.ParseQuery("score_min=70&state=QLD&state=NSW&type=")
	c, err = FromQuery(q, def)
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if c.ScoreMin != 70 || c.ScoreMax != 100 {
		t.Fatalf("range = %v..%v", c.ScoreMin, c.ScoreMax)
	}
	if !reflect.DeepEqual(c.States, []string{"QLD", "NSW"}) || len(c.Types) != 0 {
		t.Fatalf("selections = %v / %v", c.States, c.Types)
	}

	if _, err := FromQuery(url.Values{"score_max": {"high"}}, def); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	c := Criteria{ScoreMin: 65.5, ScoreMax: 90, States: []string{"QLD"}, Types: nil}
	back, err := FromQuery(c.Query(), Criteria{ScoreMin: 1, ScoreMax: 2, States: []string{"X"}, Types: []string{"Y"}})
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if back.ScoreMin != 65.5 || back.ScoreMax != 90 || !reflect.DeepEqual(back.States, []string{"QLD"}) || len(back.Types) != 0 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
