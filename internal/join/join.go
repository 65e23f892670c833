// Package join assembles the normalized source tables into the single
// combined table every dashboard view reads from.
package join

import (
	"fmt"
	"slices"

	"socio-dash/internal/dataset"
)

// Suffixes appended to non-key columns present on both sides of a join.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// Keys are the join columns shared by every normalized source.
var Keys = []string{dataset.ColISO3, dataset.ColTime}

type side struct {
	t     *dataset.Table
	byKey map[dataset.Key][]int
	dups  int
}

func index(t *dataset.Table) side {
	s := side{t: t, byKey: make(map[dataset.Key][]int, t.Len())}
	for i := 0; i < t.Len(); i++ {
		k, ok := t.Key(i)
		if !ok {
			continue
		}
		if len(s.byKey[k]) > 0 {
			s.dups++
		}
		s.byKey[k] = append(s.byKey[k], i)
	}
	return s
}

// Result carries the joined table and bookkeeping for logging.
type Result struct {
	Table *dataset.Table
	// Duplicates counts rows whose key was already held by an earlier row
	// on the same side. They are kept, not collapsed.
	Duplicates int
}

// FullOuter joins left and right on (iso3, time), keeping every key that
// appears on either side. Output columns are the left columns in order,
// then the right columns except the keys. A non-key name present on both
// sides becomes name_x (left) and name_y (right). Rows are ordered by key.
// A key held by several rows on one side yields one output row per
// left x right pair, in input order, so no input row is lost.
func FullOuter(left, right *dataset.Table) (Result, error) {
	for _, k := range Keys {
		if !left.Has(k) || !right.Has(k) {
			return Result{}, fmt.Errorf("full outer join: both tables need column %q", k)
		}
	}

	leftCols := left.Columns()
	rightCols := right.Columns()
	inRight := make(map[string]bool, len(rightCols))
	for _, c := range rightCols {
		inRight[c] = true
	}
	inLeft := make(map[string]bool, len(leftCols))
	for _, c := range leftCols {
		inLeft[c] = true
	}

	type source struct {
		right bool
		pos   int
	}
	var (
		columns []string
		from    []source
	)
	for i, c := range leftCols {
		name := c
		if !isKey(c) && inRight[c] {
			name = c + LeftSuffix
		}
		columns = append(columns, name)
		from = append(from, source{pos: i})
	}
	for i, c := range rightCols {
		if isKey(c) {
			continue
		}
		name := c
		if inLeft[c] {
			name = c + RightSuffix
		}
		columns = append(columns, name)
		from = append(from, source{right: true, pos: i})
	}

	b, err := dataset.NewBuilder(columns...)
	if err != nil {
		return Result{}, fmt.Errorf("full outer join: %w", err)
	}

	l, r := index(left), index(right)
	keys := make([]dataset.Key, 0, len(l.byKey)+len(r.byKey))
	for k := range l.byKey {
		keys = append(keys, k)
	}
	for k := range r.byKey {
		if _, ok := l.byKey[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, dataset.Key.Compare)

	leftISO, leftTime := left.ColumnIndex(dataset.ColISO3), left.ColumnIndex(dataset.ColTime)
	for _, k := range keys {
		lrows, rrows := l.byKey[k], r.byKey[k]
		if len(lrows) == 0 {
			lrows = []int{-1}
		}
		if len(rrows) == 0 {
			rrows = []int{-1}
		}
		for _, li := range lrows {
			for _, ri := range rrows {
				cells := make([]dataset.Value, len(columns))
				for c, src := range from {
					switch {
					case !src.right && li >= 0:
						cells[c] = left.At(li, src.pos)
					case src.right && ri >= 0:
						cells[c] = right.At(ri, src.pos)
					}
				}
				// Key cells come from whichever side holds the row.
				cells[leftISO] = dataset.String(k.ISO3)
				cells[leftTime] = dataset.Number(float64(k.Time))
				if err := b.Append(cells...); err != nil {
					return Result{}, fmt.Errorf("full outer join: %w", err)
				}
			}
		}
	}
	return Result{Table: b.Build(), Duplicates: l.dups + r.dups}, nil
}

func isKey(c string) bool {
	return c == dataset.ColISO3 || c == dataset.ColTime
}

// Assemble builds the combined table:
// FullOuter(FullOuter(demographics, economic), spending).
func Assemble(demographics, economic, spending *dataset.Table) (Result, error) {
	first, err := FullOuter(demographics, economic)
	if err != nil {
		return Result{}, fmt.Errorf("join demographics with economic: %w", err)
	}
	second, err := FullOuter(first.Table, spending)
	if err != nil {
		return Result{}, fmt.Errorf("join spending: %w", err)
	}
	// Repeats on the intermediate table were already counted in the first join.
	second.Duplicates = first.Duplicates + index(spending).dups
	return second, nil
}
