package dashboard_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/domain"
	"socio-dash/internal/query"
	"socio-dash/internal/service/dashboard"
	"socio-dash/internal/testutil"
)

func newService(t *testing.T) *dashboard.Service {
	t.Helper()
	return testutil.NewDashboardService(t)
}

func TestYears(t *testing.T) {
	svc := newService(t)
	assert.Equal(t, []int{2000, 2001}, svc.Years())
	assert.Equal(t, 2001, svc.LatestYear())
	assert.Len(t, svc.Indicators(), len(query.DefaultIndicators))
}

func TestYearView(t *testing.T) {
	svc := newService(t)

	v, err := svc.Year(dashboard.YearSelection{Year: 2000})
	require.NoError(t, err)
	assert.Equal(t, "GDP_PC", v.X.Column)
	assert.Equal(t, "lifeExpectancy", v.Y.Column)
	require.Len(t, v.Points, 2)
	assert.Equal(t, "AAA", v.Points[0].ISO3)
	assert.Equal(t, 2, v.Pairs)
	require.NotNil(t, v.CorrelationValue())
	assert.InDelta(t, 1.0, *v.CorrelationValue(), 1e-12)
}

func TestYearView_DefaultsToLatestYear(t *testing.T) {
	v, err := newService(t).Year(dashboard.YearSelection{})
	require.NoError(t, err)
	assert.Equal(t, 2001, v.Year)
	assert.Len(t, v.Points, 1)
	assert.Nil(t, v.CorrelationValue(), "one pair has no correlation")
}

func TestYearView_UnknownIndicator(t *testing.T) {
	_, err := newService(t).Year(dashboard.YearSelection{X: "region"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestIndicatorView(t *testing.T) {
	svc := newService(t)

	v, err := svc.Indicator(dashboard.IndicatorSelection{Column: "GDP_PC"})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Rows)
	assert.Len(t, v.Points, 4)
	assert.False(t, v.Grouped)
}

func TestIndicatorView_GroupAverage(t *testing.T) {
	v, err := newService(t).Indicator(dashboard.IndicatorSelection{Column: "GDP_PC", GroupAverage: true})
	require.NoError(t, err)
	require.Equal(t, 3, v.Rows)
	require.Len(t, v.Points, 3)
	assert.Equal(t, "AAA", v.Points[0].ISO3)
	assert.Equal(t, 30500.0, v.Points[0].X)
	assert.InDelta(t, 8.6, v.Points[0].Y, 1e-9)
	assert.Equal(t, "Europe", v.Points[0].Region)
}

func TestIndicatorView_Sample(t *testing.T) {
	svc := newService(t)
	a, err := svc.Indicator(dashboard.IndicatorSelection{Column: "GDP_PC", SampleSize: 2, Seed: 7})
	require.NoError(t, err)
	b, err := svc.Indicator(dashboard.IndicatorSelection{Column: "GDP_PC", SampleSize: 2, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Rows)
	assert.Equal(t, a.Points, b.Points)

	_, err = svc.Indicator(dashboard.IndicatorSelection{SampleSize: dashboard.MaxSampleSize + 1})
	require.Error(t, err)
}

func TestIndicatorView_SpendingOutsideAllowList(t *testing.T) {
	res := testutil.BuildFixtures(t)
	reg, err := query.NewRegistry(res.Combined, []query.IndicatorSpec{{Column: "GDP_PC"}})
	require.NoError(t, err)

	v, err := dashboard.NewService(res.Combined, reg).Indicator(dashboard.IndicatorSelection{Column: "GDP_PC"})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Rows)
	assert.Len(t, v.Points, 4)
	assert.Equal(t, 4, v.Pairs)
}

func TestRowsAndGroupMean(t *testing.T) {
	svc := newService(t)

	rows, err := svc.Rows(2000, "lifeExpectancy")
	require.NoError(t, err)
	assert.Equal(t, 2, rows.Len())

	all, err := svc.Rows(0, "")
	require.NoError(t, err)
	assert.Equal(t, 6, all.Len())

	g, err := svc.GroupMean("lifeExpectancy", "spending")
	require.NoError(t, err)
	assert.Equal(t, []string{"iso3", "region", "lifeExpectancy", "spending"}, g.Columns())

	_, err = svc.GroupMean("name", "")
	require.Error(t, err)
}

func TestSelectionFromQuery(t *testing.T) {
	ys, err := dashboard.YearSelectionFromQuery(url.Values{"time": {"2000"}, "x": {" co2_PC "}})
	require.NoError(t, err)
	assert.Equal(t, dashboard.YearSelection{Year: 2000, X: "co2_PC"}, ys)

	_, err = dashboard.YearSelectionFromQuery(url.Values{"time": {"twenty"}})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))

	is, err := dashboard.IndicatorSelectionFromQuery(url.Values{
		"column": {"GDP_PC"}, "group": {"on"}, "n": {"10"}, "seed": {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, dashboard.IndicatorSelection{Column: "GDP_PC", GroupAverage: true, SampleSize: 10, Seed: 3}, is)

	is, err = dashboard.IndicatorSelectionFromQuery(url.Values{"group": {"false"}})
	require.NoError(t, err)
	assert.False(t, is.GroupAverage)

	for _, q := range []url.Values{{"group": {"maybe"}}, {"n": {"x"}}, {"seed": {"-1"}}} {
		_, err := dashboard.IndicatorSelectionFromQuery(q)
		assert.True(t, errors.As(err, &ve), "%v", q)
	}
}
