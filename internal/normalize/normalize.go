// Package normalize reshapes the three raw source tables into the canonical
// (iso3, time, values...) layout the join assembler expects.
//
// Malformed rows are dropped rather than reported; each normalizer returns
// Stats so the caller can log how much was discarded.
package normalize

import (
	"fmt"
	"strings"

	"socio-dash/internal/dataset"
)

// Source column names.
const (
	SpendingCountryName = "Country Name"
	SpendingCountryCode = "Country Code"

	EconomicIndicator = "Indicator"
	EconomicLocation  = "LOCATION"
	EconomicCountry   = "Country"
	EconomicTime      = "Time"
	EconomicValue     = "Value"

	// ColSpending is the value column the spending unpivot produces.
	ColSpending = "spending"
)

// Stats describes what a normalizer kept and discarded. For the spending
// unpivot a row is one country-year cell of the wide source.
type Stats struct {
	RowsRead    int
	RowsEmitted int
	RowsDropped int
}

// MissingColumnError reports a required column absent from a source header.
type MissingColumnError struct {
	Source string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s source: missing required column %q", e.Source, e.Column)
}

func requireColumns(raw *dataset.RawTable, source string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = raw.Index(n)
		if idx[i] < 0 {
			return nil, &MissingColumnError{Source: source, Column: n}
		}
	}
	return idx, nil
}

// parseYear accepts "2000" and "2000.0"; anything else is not a year.
func parseYear(s string) (int, bool) {
	return dataset.ParseValue(s).Int()
}

// Demographics parses the demographics source, which is already one row per
// country-year. Identifier columns stay text; every other cell is parsed
// as a number where possible. Rows without an iso3 or with a non-integer
// time are dropped.
func Demographics(raw *dataset.RawTable) (*dataset.Table, Stats, error) {
	var st Stats
	idx, err := requireColumns(raw, "demographics", dataset.ColISO3, dataset.ColTime)
	if err != nil {
		return nil, st, err
	}
	isoCol, timeCol := idx[0], idx[1]

	columns := make([]string, len(raw.Header))
	copy(columns, raw.Header)
	b, err := dataset.NewBuilder(columns...)
	if err != nil {
		return nil, st, fmt.Errorf("demographics source: %w", err)
	}

	for r := range raw.Records {
		st.RowsRead++
		iso := dataset.ParseText(raw.Cell(r, isoCol))
		year, ok := parseYear(raw.Cell(r, timeCol))
		if iso.IsNull() || !ok {
			st.RowsDropped++
			continue
		}
		cells := make([]dataset.Value, len(columns))
		for c, name := range columns {
			switch {
			case c == isoCol:
				cells[c] = iso
			case c == timeCol:
				cells[c] = dataset.Number(float64(year))
			case isTextColumn(name):
				cells[c] = dataset.ParseText(raw.Cell(r, c))
			default:
				cells[c] = dataset.ParseValue(raw.Cell(r, c))
			}
		}
		if err := b.Append(cells...); err != nil {
			return nil, st, fmt.Errorf("demographics source: %w", err)
		}
		st.RowsEmitted++
	}
	return b.Build(), st, nil
}

func isTextColumn(name string) bool {
	switch strings.ToLower(name) {
	case dataset.ColName, dataset.ColRegion, dataset.ColISO3, "country", "continent", "income_group":
		return true
	}
	return false
}
