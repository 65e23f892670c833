// Package dashboard turns user selections into views over the combined
// table. Each call recomputes its view from scratch with the pure query
// functions; nothing is cached and nothing is mutated.
package dashboard

import (
	"math"
	"math/rand/v2"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
	"socio-dash/internal/normalize"
	"socio-dash/internal/query"
)

// Default selections.
const (
	DefaultX          = "GDP_PC"
	DefaultY          = "lifeExpectancy"
	DefaultSampleSize = 50
	MaxSampleSize     = 1000
)

// Service serves views over an immutable combined table.
type Service struct {
	table    *dataset.Table
	registry *query.Registry
	years    []int
}

// NewService creates a dashboard service.
func NewService(table *dataset.Table, registry *query.Registry) *Service {
	return &Service{table: table, registry: registry, years: query.Years(table)}
}

// Table returns the combined table.
func (s *Service) Table() *dataset.Table { return s.table }

// Indicators returns the plottable indicators.
func (s *Service) Indicators() []query.IndicatorSpec { return s.registry.Specs() }

// Years returns the years present in the combined table.
func (s *Service) Years() []int {
	out := make([]int, len(s.years))
	copy(out, s.years)
	return out
}

// LatestYear returns the most recent year, or 0 for an empty table.
func (s *Service) LatestYear() int {
	if len(s.years) == 0 {
		return 0
	}
	return s.years[len(s.years)-1]
}

// YearSelection is the input of the year view.
type YearSelection struct {
	Year int
	X    string
	Y    string
}

// YearView is a scatter of two indicators for one year plus the
// correlation text.
type YearView struct {
	Year        int                 `json:"time"`
	X           query.IndicatorSpec `json:"x"`
	Y           query.IndicatorSpec `json:"y"`
	Points      []query.Point       `json:"points"`
	Correlation float64             `json:"-"`
	Pairs       int                 `json:"pairs"`
}

// CorrelationValue returns the correlation, or nil when it is undefined
// (JSON has no NaN).
func (v YearView) CorrelationValue() *float64 {
	if math.IsNaN(v.Correlation) {
		return nil
	}
	c := v.Correlation
	return &c
}

// Year builds the year view. Zero fields fall back to the latest year and
// the default indicators.
func (s *Service) Year(sel YearSelection) (*YearView, error) {
	if sel.Year == 0 {
		sel.Year = s.LatestYear()
	}
	if sel.X == "" {
		sel.X = DefaultX
	}
	if sel.Y == "" {
		sel.Y = DefaultY
	}
	x, err := s.registry.Lookup(sel.X)
	if err != nil {
		return nil, err
	}
	y, err := s.registry.Lookup(sel.Y)
	if err != nil {
		return nil, err
	}

	rows, err := query.FilterTime(s.table, sel.Year)
	if err != nil {
		return nil, err
	}
	points := query.ScatterBy(rows, x.Get, y.Get)
	r, pairs := query.CorrelationBy(rows, x.Get, y.Get)
	return &YearView{
		Year:        sel.Year,
		X:           x.IndicatorSpec,
		Y:           y.IndicatorSpec,
		Points:      points,
		Correlation: r,
		Pairs:       pairs,
	}, nil
}

// IndicatorSelection is the input of the indicator view.
type IndicatorSelection struct {
	Column string
	// GroupAverage averages the indicator and spending per (iso3, region)
	// across all years.
	GroupAverage bool
	// SampleSize limits the rows shown; 0 shows every row.
	SampleSize int
	Seed       uint64
}

// IndicatorView plots an indicator against health spending.
type IndicatorView struct {
	Indicator   query.IndicatorSpec `json:"indicator"`
	Grouped     bool                `json:"grouped"`
	Rows        int                 `json:"rows"`
	Points      []query.Point       `json:"points"`
	Correlation float64             `json:"-"`
	Pairs       int                 `json:"pairs"`
}

// CorrelationValue returns the correlation, or nil when it is undefined.
func (v IndicatorView) CorrelationValue() *float64 {
	if math.IsNaN(v.Correlation) {
		return nil
	}
	c := v.Correlation
	return &c
}

// Indicator builds the indicator view: rows where the indicator is present,
// optionally averaged per (iso3, region) and optionally sampled, plotted
// against spending.
func (s *Service) Indicator(sel IndicatorSelection) (*IndicatorView, error) {
	if sel.Column == "" {
		sel.Column = DefaultX
	}
	if sel.SampleSize < 0 || sel.SampleSize > MaxSampleSize {
		return nil, domain.ErrValidation("sample size must be between 0 and %d", MaxSampleSize)
	}
	ind, err := s.registry.Lookup(sel.Column)
	if err != nil {
		return nil, err
	}

	rows, err := query.FilterNonMissing(s.table, ind.Column)
	if err != nil {
		return nil, err
	}
	if sel.GroupAverage {
		cols := []string{ind.Column}
		if ind.Column != normalize.ColSpending {
			cols = append(cols, normalize.ColSpending)
		}
		rows, err = query.GroupMean(rows, []string{dataset.ColISO3, dataset.ColRegion}, cols)
		if err != nil {
			return nil, err
		}
	}
	if sel.SampleSize > 0 {
		rows = query.Sample(rows, sel.SampleSize, rand.New(rand.NewPCG(sel.Seed, sel.Seed^0x9e3779b97f4a7c15)))
	}

	spending := s.spending()
	points := query.ScatterBy(rows, ind.Get, spending.Get)
	r, pairs := query.CorrelationBy(rows, ind.Get, spending.Get)
	return &IndicatorView{
		Indicator:   ind.IndicatorSpec,
		Grouped:     sel.GroupAverage,
		Rows:        rows.Len(),
		Points:      points,
		Correlation: r,
		Pairs:       pairs,
	}, nil
}

// spending is the fixed y axis of the indicator view: the allow-listed
// entry when there is one, else the raw column.
func (s *Service) spending() query.Indicator {
	if ind, err := s.registry.Lookup(normalize.ColSpending); err == nil {
		return ind
	}
	return query.ColumnIndicator(normalize.ColSpending)
}

// Rows returns the combined rows, optionally filtered by year and by a
// non-missing column. year 0 means every year; column "" means no filter.
func (s *Service) Rows(year int, column string) (*dataset.Table, error) {
	t := s.table
	var err error
	if year != 0 {
		if t, err = query.FilterTime(t, year); err != nil {
			return nil, err
		}
	}
	if column != "" {
		if t, err = query.FilterNonMissing(t, column); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Sample returns n rows drawn without replacement with a seeded generator.
func (s *Service) Sample(n int, seed uint64) (*dataset.Table, error) {
	if n < 0 || n > MaxSampleSize {
		return nil, domain.ErrValidation("sample size must be between 0 and %d", MaxSampleSize)
	}
	return query.Sample(s.table, n, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))), nil
}

// GroupMean averages column and with per (iso3, region).
func (s *Service) GroupMean(column, with string) (*dataset.Table, error) {
	if _, err := s.registry.Lookup(column); err != nil {
		return nil, err
	}
	cols := []string{column}
	if with != "" && with != column {
		if _, err := s.registry.Lookup(with); err != nil {
			return nil, err
		}
		cols = append(cols, with)
	}
	return query.GroupMean(s.table, []string{dataset.ColISO3, dataset.ColRegion}, cols)
}
