package normalize

import (
	"fmt"
	"slices"

	"socio-dash/internal/dataset"
)

type econCell struct {
	sum   float64
	count int
}

type econRow struct {
	name  dataset.Value
	cells map[string]*econCell
}

// Economic pivots the long economic source (one row per indicator
// observation) into one row per (iso3, time), with a column per distinct
// indicator label. Output columns are iso3, name, time followed by the
// labels in lexical order; unreported indicators are Null.
//
// Repeated observations of the same indicator for a country-year are
// averaged. A row whose Time is not an integer year, or whose location or
// indicator is blank, is dropped; a non-numeric Value contributes nothing.
func Economic(raw *dataset.RawTable) (*dataset.Table, Stats, error) {
	var st Stats
	idx, err := requireColumns(raw, "economic",
		EconomicIndicator, EconomicLocation, EconomicCountry, EconomicTime, EconomicValue)
	if err != nil {
		return nil, st, err
	}
	indCol, locCol, countryCol, timeCol, valCol := idx[0], idx[1], idx[2], idx[3], idx[4]

	rows := make(map[dataset.Key]*econRow)
	var keys []dataset.Key
	labels := make(map[string]struct{})

	for r := range raw.Records {
		st.RowsRead++
		label := dataset.ParseText(raw.Cell(r, indCol))
		iso := dataset.ParseText(raw.Cell(r, locCol))
		year, ok := parseYear(raw.Cell(r, timeCol))
		if !ok || label.IsNull() || iso.IsNull() {
			st.RowsDropped++
			continue
		}
		labels[label.Text()] = struct{}{}

		key := dataset.Key{ISO3: iso.Text(), Time: year}
		row, seen := rows[key]
		if !seen {
			row = &econRow{cells: make(map[string]*econCell)}
			rows[key] = row
			keys = append(keys, key)
		}
		if row.name.IsNull() {
			row.name = dataset.ParseText(raw.Cell(r, countryCol))
		}

		f, ok := dataset.ParseValue(raw.Cell(r, valCol)).Float()
		if !ok {
			continue
		}
		cell := row.cells[label.Text()]
		if cell == nil {
			cell = &econCell{}
			row.cells[label.Text()] = cell
		}
		cell.sum += f
		cell.count++
	}

	sorted := make([]string, 0, len(labels))
	for l := range labels {
		sorted = append(sorted, l)
	}
	slices.Sort(sorted)

	columns := append([]string{dataset.ColISO3, dataset.ColName, dataset.ColTime}, sorted...)
	b, err := dataset.NewBuilder(columns...)
	if err != nil {
		// An indicator label collides with a key column name.
		return nil, st, fmt.Errorf("economic source: %w", err)
	}

	slices.SortFunc(keys, dataset.Key.Compare)
	for _, key := range keys {
		row := rows[key]
		cells := make([]dataset.Value, len(columns))
		cells[0] = dataset.String(key.ISO3)
		cells[1] = row.name
		cells[2] = dataset.Number(float64(key.Time))
		for i, l := range sorted {
			if c := row.cells[l]; c != nil && c.count > 0 {
				cells[3+i] = dataset.Number(c.sum / float64(c.count))
			}
		}
		if err := b.Append(cells...); err != nil {
			return nil, st, fmt.Errorf("economic source: %w", err)
		}
		st.RowsEmitted++
	}
	return b.Build(), st, nil
}
