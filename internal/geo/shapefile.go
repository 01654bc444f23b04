package geo

import (
	"fmt"
	"math"
	"os"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
)

// dbf field names are limited to 10 characters.
var shapeFields = []shp.Field{
	shp.StringField("SUBURB", 64),
	shp.StringField("STATE", 16),
	shp.StringField("PROPTYPE", 32),
	shp.FloatField("SCORE", 12, 2),
	shp.FloatField("GROWTH10Y", 12, 2),
	shp.FloatField("GAPINDEX", 12, 2),
	shp.FloatField("YIELD", 12, 2),
	shp.FloatField("BUYAFFYRS", 12, 2),
	shp.FloatField("RENTAFFPCT", 12, 2),
}

// WriteShapefile writes the located rows of ds as a point layer at path
// (path should end in .shp; the .shx and .dbf siblings are created alongside).
// It returns the number of points written.
func WriteShapefile(path string, ds *dataset.Dataset) (int, error) {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return 0, fmt.Errorf("create shapefile: %w", err)
	}
	count, werr := writePoints(w, ds)
	w.Close()
	if werr != nil {
		return count, werr
	}
	// go-shp names the attribute table "<base>dbf", without the dot.
	base := path
	if strings.HasSuffix(strings.ToLower(base), ".shp") {
		base = base[:len(base)-len(".shp")]
	}
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return count, fmt.Errorf("rename attribute table: %w", err)
	}
	return count, nil
}

func writePoints(w *shp.Writer, ds *dataset.Dataset) (int, error) {
	if err := w.SetFields(shapeFields); err != nil {
		return 0, fmt.Errorf("set fields: %w", err)
	}
	count := 0
	for _, row := range ds.Rows {
		if !row.HasLocation() {
			continue
		}
		n := int(w.Write(&shp.Point{X: row.Longitude, Y: row.Latitude}))
		values := []interface{}{
			row.Name,
			row.State,
			row.PropertyType,
			attr(row.InvestorScore),
			attr(row.TenYearGrowth),
			attr(row.GrowthGapIndex),
			attr(row.Yield),
			attr(row.BuyAffordability),
			attr(row.RentAffordability),
		}
		for field, v := range values {
			if err := w.WriteAttribute(n, field, v); err != nil {
				return count, fmt.Errorf("write attribute %d of %q: %w", field, row.Name, err)
			}
		}
		count++
	}
	return count, nil
}

// attr leaves missing numbers blank in the attribute table.
func attr(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
