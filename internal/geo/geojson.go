// Package geo exports suburb locations as GeoJSON and ESRI shapefiles.
package geo

import (
	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// FeatureCollection is a GeoJSON (RFC 7946) collection of suburb points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

// Properties carries the metrics shown when hovering a point.
type Properties struct {
	Suburb            string   `json:"suburb"`
	State             string   `json:"state"`
	PropertyType      string   `json:"property_type"`
	InvestorScore     *float64 `json:"investor_score"`
	GrowthGapIndex    *float64 `json:"growth_gap_index"`
	TenYearGrowth     *float64 `json:"ten_year_growth"`
	Yield             *float64 `json:"yield"`
	BuyAffordability  *float64 `json:"buy_affordability_years"`
	RentAffordability *float64 `json:"rent_affordability_pct_income"`
}

// Features converts the rows of ds that have coordinates into point features.
func Features(ds *dataset.Dataset) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, row := range ds.Rows {
		if !row.HasLocation() {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: []float64{row.Longitude, row.Latitude}},
			Properties: Properties{
				Suburb:            row.Name,
				State:             row.State,
				PropertyType:      row.PropertyType,
				InvestorScore:     dataset.Nullable(row.InvestorScore),
				GrowthGapIndex:    dataset.Nullable(row.GrowthGapIndex),
				TenYearGrowth:     dataset.Nullable(row.TenYearGrowth),
				Yield:             dataset.Nullable(row.Yield),
				BuyAffordability:  dataset.Nullable(row.BuyAffordability),
				RentAffordability: dataset.Nullable(row.RentAffordability),
			},
		})
	}
	return fc
}
