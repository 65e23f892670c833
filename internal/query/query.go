// Package query implements the read-only query shapes the dashboard issues
// against the combined table. Every function is pure: it reads an
// immutable table and returns a new one, so handlers can call them
// concurrently without locking.
package query

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
)

func requireColumn(t *dataset.Table, column string) error {
	if !t.Has(column) {
		return domain.ErrValidation("unknown column %q", column)
	}
	return nil
}

// FilterTime returns the rows whose time equals year.
func FilterTime(t *dataset.Table, year int) (*dataset.Table, error) {
	if err := requireColumn(t, dataset.ColTime); err != nil {
		return nil, err
	}
	c := t.ColumnIndex(dataset.ColTime)
	return t.Filter(func(i int) bool {
		y, ok := t.At(i, c).Int()
		return ok && y == year
	}), nil
}

// FilterNonMissing returns the rows where column holds a value.
func FilterNonMissing(t *dataset.Table, column string) (*dataset.Table, error) {
	if err := requireColumn(t, column); err != nil {
		return nil, err
	}
	c := t.ColumnIndex(column)
	return t.Filter(func(i int) bool { return !t.At(i, c).IsNull() }), nil
}

// Years returns the distinct years present in the table, ascending.
func Years(t *dataset.Table) []int {
	c := t.ColumnIndex(dataset.ColTime)
	if c < 0 {
		return nil
	}
	seen := make(map[int]struct{})
	var out []int
	for i := 0; i < t.Len(); i++ {
		y, ok := t.At(i, c).Int()
		if !ok {
			continue
		}
		if _, dup := seen[y]; !dup {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	slices.Sort(out)
	return out
}

type meanAcc struct {
	sum   float64
	count int
}

// GroupMean groups rows by the groupBy columns and averages each of the
// value columns. Missing and non-numeric cells are skipped; a group with no
// numeric cell for a column gets Null. The output has the groupBy columns
// followed by the value columns, one row per group ordered by group key.
// Rows whose group key has a missing cell form their own group.
func GroupMean(t *dataset.Table, groupBy, columns []string) (*dataset.Table, error) {
	if len(groupBy) == 0 {
		return nil, domain.ErrValidation("group by needs at least one column")
	}
	for _, c := range append(slices.Clone(groupBy), columns...) {
		if err := requireColumn(t, c); err != nil {
			return nil, err
		}
	}
	out, err := dataset.NewBuilder(append(slices.Clone(groupBy), columns...)...)
	if err != nil {
		return nil, domain.ErrValidation("group mean: %v", err)
	}

	gIdx := make([]int, len(groupBy))
	for i, g := range groupBy {
		gIdx[i] = t.ColumnIndex(g)
	}
	vIdx := make([]int, len(columns))
	for i, c := range columns {
		vIdx[i] = t.ColumnIndex(c)
	}

	type group struct {
		key  []dataset.Value
		accs []meanAcc
	}
	groups := make(map[string]*group)
	var order []string
	for i := 0; i < t.Len(); i++ {
		key := make([]dataset.Value, len(gIdx))
		parts := make([]string, len(gIdx))
		for j, c := range gIdx {
			key[j] = t.At(i, c)
			parts[j] = key[j].Kind().String() + ":" + key[j].Text()
		}
		id := strings.Join(parts, "\x1f")
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, accs: make([]meanAcc, len(vIdx))}
			groups[id] = g
			order = append(order, id)
		}
		for j, c := range vIdx {
			if f, ok := t.At(i, c).Float(); ok {
				g.accs[j].sum += f
				g.accs[j].count++
			}
		}
	}

	slices.SortFunc(order, func(a, b string) int {
		return compareValues(groups[a].key, groups[b].key)
	})
	for _, id := range order {
		g := groups[id]
		cells := slices.Clone(g.key)
		for _, acc := range g.accs {
			if acc.count == 0 {
				cells = append(cells, dataset.Null)
				continue
			}
			cells = append(cells, dataset.Number(acc.sum/float64(acc.count)))
		}
		if err := out.Append(cells...); err != nil {
			return nil, err
		}
	}
	return out.Build(), nil
}

// compareValues orders value tuples: nulls first, numbers by value, then
// strings lexically.
func compareValues(a, b []dataset.Value) int {
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind() != y.Kind() {
			if x.Kind() < y.Kind() {
				return -1
			}
			return 1
		}
		switch x.Kind() {
		case dataset.KindNumber:
			fx, _ := x.Float()
			fy, _ := y.Float()
			if fx < fy {
				return -1
			}
			if fx > fy {
				return 1
			}
		case dataset.KindString:
			if c := strings.Compare(x.Text(), y.Text()); c != 0 {
				return c
			}
		}
	}
	return 0
}

// Sample draws n rows without replacement using rng. n is clamped to the
// table length; a non-positive n yields an empty table. Rows come back in
// draw order.
func Sample(t *dataset.Table, n int, rng *rand.Rand) *dataset.Table {
	n = max(0, min(n, t.Len()))
	perm := rng.Perm(t.Len())
	return t.Select(perm[:n])
}

// Correlation returns the Pearson correlation of columns x and y over rows
// where both are numeric, and the number of such rows. With fewer than two
// rows, or a constant column, the result is NaN; callers display it as is.
func Correlation(t *dataset.Table, x, y string) (float64, int, error) {
	if err := requireColumn(t, x); err != nil {
		return 0, 0, err
	}
	if err := requireColumn(t, y); err != nil {
		return 0, 0, err
	}
	r, pairs := CorrelationBy(t, ColumnAccessor(x), ColumnAccessor(y))
	return r, pairs, nil
}

// CorrelationBy is Correlation over accessors, typically Indicator.Get.
func CorrelationBy(t *dataset.Table, x, y Accessor) (float64, int) {
	var xs, ys []float64
	for i := 0; i < t.Len(); i++ {
		fx, okx := x(t, i)
		fy, oky := y(t, i)
		if okx && oky {
			xs = append(xs, fx)
			ys = append(ys, fy)
		}
	}
	return pearson(xs, ys), len(xs)
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if len(xs) < 2 {
		return math.NaN()
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	// 0/0 for a constant column: NaN, passed through.
	return sxy / math.Sqrt(sxx*syy)
}
