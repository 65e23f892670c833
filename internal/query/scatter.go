package query

import (
	"socio-dash/internal/dataset"
)

// Point is one country-year in a scatter plot.
type Point struct {
	ISO3   string  `json:"iso3"`
	Name   string  `json:"name"`
	Region string  `json:"region,omitempty"`
	Time   int     `json:"time"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// nameColumns lists, in preference order, the columns a country name is
// read from. The full outer join suffixes the per-source name columns.
var nameColumns = []string{dataset.ColName, "name_x", "name_y"}

// DisplayName returns the first non-missing country name for row i.
func DisplayName(t *dataset.Table, i int) string {
	for _, c := range nameColumns {
		if v := t.Value(i, c); !v.IsNull() {
			return v.Text()
		}
	}
	return t.Value(i, dataset.ColISO3).Text()
}

// Scatter returns one point per row where both x and y are numeric.
func Scatter(t *dataset.Table, x, y string) ([]Point, error) {
	if err := requireColumn(t, x); err != nil {
		return nil, err
	}
	if err := requireColumn(t, y); err != nil {
		return nil, err
	}
	return ScatterBy(t, ColumnAccessor(x), ColumnAccessor(y)), nil
}

// ScatterBy is Scatter over accessors, typically Indicator.Get.
func ScatterBy(t *dataset.Table, x, y Accessor) []Point {
	points := make([]Point, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		fx, okx := x(t, i)
		fy, oky := y(t, i)
		if !okx || !oky {
			continue
		}
		year, _ := t.Value(i, dataset.ColTime).Int()
		points = append(points, Point{
			ISO3:   t.Value(i, dataset.ColISO3).Text(),
			Name:   DisplayName(t, i),
			Region: t.Value(i, dataset.ColRegion).Text(),
			Time:   year,
			X:      fx,
			Y:      fy,
		})
	}
	return points
}
