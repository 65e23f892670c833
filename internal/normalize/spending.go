package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"socio-dash/internal/dataset"
)

// YearRange bounds the year columns the spending unpivot reads.
type YearRange struct {
	From int
	To   int
}

// DefaultYears is the range the spending export covers.
var DefaultYears = YearRange{From: 2000, To: 2019}

// Contains reports whether year lies inside the inclusive range.
func (y YearRange) Contains(year int) bool {
	return year >= y.From && year <= y.To
}

// Validate checks the range is not inverted.
func (y YearRange) Validate() error {
	if y.From > y.To {
		return fmt.Errorf("year range %d-%d is inverted", y.From, y.To)
	}
	return nil
}

type yearColumn struct {
	pos  int
	year int
}

// Spending unpivots the wide-by-year spending source into one row per
// country-year: columns name, iso3, time, spending. Year columns outside
// years are not read, and rows with an absent or non-numeric spending value
// are dropped.
func Spending(raw *dataset.RawTable, years YearRange) (*dataset.Table, Stats, error) {
	var st Stats
	if err := years.Validate(); err != nil {
		return nil, st, err
	}
	idx, err := requireColumns(raw, "spending", SpendingCountryName, SpendingCountryCode)
	if err != nil {
		return nil, st, err
	}
	nameCol, codeCol := idx[0], idx[1]

	var yearCols []yearColumn
	for pos, h := range raw.Header {
		y, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil || !years.Contains(y) {
			continue
		}
		yearCols = append(yearCols, yearColumn{pos: pos, year: y})
	}

	b := dataset.MustBuilder(dataset.ColName, dataset.ColISO3, dataset.ColTime, ColSpending)
	for r := range raw.Records {
		name := dataset.ParseText(raw.Cell(r, nameCol))
		iso := dataset.ParseText(raw.Cell(r, codeCol))
		for _, yc := range yearCols {
			st.RowsRead++
			v := dataset.ParseValue(raw.Cell(r, yc.pos))
			if _, ok := v.Float(); !ok || iso.IsNull() {
				st.RowsDropped++
				continue
			}
			if err := b.Append(name, iso, dataset.Number(float64(yc.year)), v); err != nil {
				return nil, st, fmt.Errorf("spending source: %w", err)
			}
			st.RowsEmitted++
		}
	}
	return b.Build(), st, nil
}
