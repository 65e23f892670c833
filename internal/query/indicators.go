package query

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
)

// IndicatorSpec names a plottable column.
type IndicatorSpec struct {
	Column string `yaml:"column" json:"column"`
	Label  string `yaml:"label"  json:"label"`
	Unit   string `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// DefaultIndicators is the built-in allow-list of plottable columns.
var DefaultIndicators = []IndicatorSpec{
	{Column: "GDP_PC", Label: "GDP per capita", Unit: "USD PPP"},
	{Column: "co2_PC", Label: "CO2 emissions per capita", Unit: "tonnes"},
	{Column: "lifeExpectancy", Label: "Life expectancy", Unit: "years"},
	{Column: "childMortality", Label: "Child mortality", Unit: "per 1,000 births"},
	{Column: "spending", Label: "Government health spending", Unit: "% of GDP"},
}

type indicatorFile struct {
	Indicators []IndicatorSpec `yaml:"indicators"`
}

// LoadIndicatorSpecs reads an allow-list from a YAML file of the form
//
//	indicators:
//	  - column: GDP_PC
//	    label: GDP per capita
func LoadIndicatorSpecs(path string) ([]IndicatorSpec, error) {
	b, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read indicators file: %w", err)
	}
	var f indicatorFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse indicators file %s: %w", path, err)
	}
	if len(f.Indicators) == 0 {
		return nil, fmt.Errorf("indicators file %s lists no indicators", path)
	}
	return f.Indicators, nil
}

// Accessor reads a numeric cell from row i of t. ok is false when the cell
// is missing or not a number.
type Accessor func(t *dataset.Table, i int) (v float64, ok bool)

// ColumnAccessor reads the named column. A table without the column yields
// no values.
func ColumnAccessor(column string) Accessor {
	return func(t *dataset.Table, i int) (float64, bool) {
		return t.Value(i, column).Float()
	}
}

// Indicator is an allow-listed column with a typed accessor.
type Indicator struct {
	IndicatorSpec
	// Get reads the indicator from row i of a table with the combined
	// schema, or any table derived from it that keeps the column.
	Get Accessor
}

// ColumnIndicator binds a column outside the allow-list, labelled by its
// own name.
func ColumnIndicator(column string) Indicator {
	return Indicator{
		IndicatorSpec: IndicatorSpec{Column: column, Label: column},
		Get:           ColumnAccessor(column),
	}
}

// Registry is the validated allow-list, in display order.
type Registry struct {
	list   []Indicator
	byName map[string]Indicator
}

// NewRegistry binds each spec to an accessor after checking it against the
// table schema: the column must exist and hold no text cells. All problems
// are reported together.
func NewRegistry(t *dataset.Table, specs []IndicatorSpec) (*Registry, error) {
	r := &Registry{byName: make(map[string]Indicator, len(specs))}
	var problems []string
	for _, spec := range specs {
		if spec.Column == "" {
			problems = append(problems, "indicator with empty column")
			continue
		}
		if _, dup := r.byName[spec.Column]; dup {
			problems = append(problems, fmt.Sprintf("%q listed twice", spec.Column))
			continue
		}
		c := t.ColumnIndex(spec.Column)
		if c < 0 {
			problems = append(problems, fmt.Sprintf("%q is not a column of the combined table", spec.Column))
			continue
		}
		if row, bad := firstText(t, c); bad {
			problems = append(problems, fmt.Sprintf("%q holds text at row %d", spec.Column, row))
			continue
		}
		if spec.Label == "" {
			spec.Label = spec.Column
		}
		ind := Indicator{IndicatorSpec: spec, Get: ColumnAccessor(spec.Column)}
		r.list = append(r.list, ind)
		r.byName[spec.Column] = ind
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid indicator allow-list: %s", strings.Join(problems, "; "))
	}
	return r, nil
}

func firstText(t *dataset.Table, c int) (int, bool) {
	for i := 0; i < t.Len(); i++ {
		if t.At(i, c).Kind() == dataset.KindString {
			return i, true
		}
	}
	return 0, false
}

// List returns the indicators in display order.
func (r *Registry) List() []Indicator {
	out := make([]Indicator, len(r.list))
	copy(out, r.list)
	return out
}

// Specs returns the indicator specs in display order.
func (r *Registry) Specs() []IndicatorSpec {
	out := make([]IndicatorSpec, len(r.list))
	for i, ind := range r.list {
		out[i] = ind.IndicatorSpec
	}
	return out
}

// Lookup returns the indicator for a column, or a ValidationError when the
// column is not allow-listed.
func (r *Registry) Lookup(column string) (Indicator, error) {
	ind, ok := r.byName[column]
	if !ok {
		return Indicator{}, domain.ErrValidation("%q is not a plottable indicator", column)
	}
	return ind, nil
}
