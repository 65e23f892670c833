package ui

import (
	"strconv"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"

	"socio-dash/internal/normalize"
	"socio-dash/internal/query"
	"socio-dash/internal/service/dashboard"
)

func indicatorOptions(specs []query.IndicatorSpec) [][2]string {
	out := make([][2]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, [2]string{s.Column, s.Label})
	}
	return out
}

func axisLabel(s query.IndicatorSpec) string {
	if s.Unit == "" {
		return s.Label
	}
	return s.Label + " (" + s.Unit + ")"
}

func yearPage(v *dashboard.YearView, years []int, specs []query.IndicatorSpec) Node {
	yearOpts := make([][2]string, 0, len(years))
	for _, y := range years {
		s := strconv.Itoa(y)
		yearOpts = append(yearOpts, [2]string{s, s})
	}
	return appPage(
		"By year",
		"year",
		selectionForm("/ui",
			selectControl("Year", "time", strconv.Itoa(v.Year), yearOpts),
			selectControl("X axis", "x", v.X.Column, indicatorOptions(specs)),
			selectControl("Y axis", "y", v.Y.Column, indicatorOptions(specs)),
		),
		resultSection(v.Points, v.X, v.Y, v.Correlation, v.Pairs),
	)
}

func indicatorPage(v *dashboard.IndicatorView, sel dashboard.IndicatorSelection, specs []query.IndicatorSpec) Node {
	spending := query.IndicatorSpec{Column: normalize.ColSpending, Label: "Government health spending"}
	for _, s := range specs {
		if s.Column == normalize.ColSpending {
			spending = s
		}
	}
	sample := ""
	if sel.SampleSize > 0 {
		sample = strconv.Itoa(sel.SampleSize)
	}
	return appPage(
		"By indicator",
		"indicator",
		selectionForm("/ui/indicator",
			selectControl("Indicator", "column", v.Indicator.Column, indicatorOptions(specs)),
			Label(Text("Average per country"),
				Input(Type("checkbox"), Name("group"), Value("true"), If(sel.GroupAverage, Checked()))),
			Label(Text("Sample size"),
				Input(Type("number"), Name("n"), Class("form-control"), Min("0"), Max(strconv.Itoa(dashboard.MaxSampleSize)),
					Placeholder("all"), Value(sample))),
			Label(Text("Seed"),
				Input(Type("number"), Name("seed"), Class("form-control"), Min("0"), Value(strconv.FormatUint(sel.Seed, 10)))),
		),
		P(Class(mutedClass()), Text(strconv.Itoa(v.Rows)+" rows")),
		resultSection(v.Points, v.Indicator, spending, v.Correlation, v.Pairs),
	)
}

func resultSection(points []query.Point, x, y query.IndicatorSpec, r float64, pairs int) Node {
	if len(points) == 0 {
		return Group([]Node{
			Div(Class(cardClass()), P(Class("correlation"), Text(correlationText(x.Label, y.Label, r, pairs)))),
			emptyStateCard("No rows have both values for this selection."),
		})
	}
	return Div(
		data.Signals(map[string]any{"q": ""}),
		Div(Class(cardClass()), P(Class("correlation"), Text(correlationText(x.Label, y.Label, r, pairs)))),
		quickFilterCard("Filter by country name or code"),
		Div(Class(cardClass()), scatterChart(points, axisLabel(x), axisLabel(y))),
		pointsTable(points, x, y),
	)
}

func pointsTable(points []query.Point, x, y query.IndicatorSpec) Node {
	rows := make([]Node, 0, len(points))
	for _, p := range points {
		rows = append(rows, Tr(
			data.Show(containsExpr(p.Name+" "+p.ISO3)),
			Td(Text(p.Name)),
			Td(Text(p.ISO3)),
			Td(Text(p.Region)),
			Td(Class("num"), Text(yearText(p.Time))),
			Td(Class("num"), Text(formatNumber(p.X))),
			Td(Class("num"), Text(formatNumber(p.Y))),
		))
	}
	return Div(Class(cardClass("table-wrap")), Table(Class("data-table"),
		THead(Tr(Th(Text("Country")), Th(Text("Code")), Th(Text("Region")), Th(Text("Year")), Th(Text(x.Label)), Th(Text(y.Label)))),
		TBody(Group(rows)),
	))
}

// yearText shows "-" for points averaged over every year.
func yearText(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}
