package ui

import (
	"fmt"
	"math"
	"strconv"

	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"socio-dash/internal/query"
)

const (
	chartWidth  = 640.0
	chartHeight = 400.0
	chartMargin = 56.0
	chartTicks  = 4
	pointRadius = 4
)

type axisRange struct {
	min, max float64
}

// rangeOf returns the padded extent of vals. Degenerate ranges are widened
// so every point still lands inside the plot.
func rangeOf(vals []float64) axisRange {
	if len(vals) == 0 {
		return axisRange{0, 1}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return axisRange{lo - 1, hi + 1}
	}
	pad := (hi - lo) * 0.05
	return axisRange{lo - pad, hi + pad}
}

// scale maps v into [from, to].
func (a axisRange) scale(v, from, to float64) float64 {
	return from + (v-a.min)/(a.max-a.min)*(to-from)
}

func (a axisRange) ticks() []float64 {
	out := make([]float64, chartTicks+1)
	for i := range out {
		out[i] = a.min + (a.max-a.min)*float64(i)/chartTicks
	}
	return out
}

func formatNumber(v float64) string {
	if math.Abs(v) >= 1000 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func svgAttr(name string, v float64) gomponents.Node {
	return gomponents.Attr(name, strconv.FormatFloat(v, 'f', 1, 64))
}

// scatterChart renders points as an inline SVG. Each point carries a
// datastar show expression so the quick filter hides it with its table row.
func scatterChart(points []query.Point, xLabel, yLabel string) gomponents.Node {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	xr, yr := rangeOf(xs), rangeOf(ys)
	left, right := chartMargin, chartWidth-chartMargin/2
	top, bottom := chartMargin/2, chartHeight-chartMargin

	nodes := []gomponents.Node{
		html.Class("chart"),
		gomponents.Attr("viewBox", fmt.Sprintf("0 0 %.0f %.0f", chartWidth, chartHeight)),
		gomponents.Attr("role", "img"),
		gomponents.Attr("aria-label", yLabel+" against "+xLabel),
		gomponents.El("line", html.Class("axis"), svgAttr("x1", left), svgAttr("y1", bottom), svgAttr("x2", right), svgAttr("y2", bottom)),
		gomponents.El("line", html.Class("axis"), svgAttr("x1", left), svgAttr("y1", top), svgAttr("x2", left), svgAttr("y2", bottom)),
	}
	for _, t := range xr.ticks() {
		x := xr.scale(t, left, right)
		nodes = append(nodes, gomponents.El("text", html.Class("tick"),
			svgAttr("x", x), svgAttr("y", bottom+16), gomponents.Attr("text-anchor", "middle"),
			gomponents.Text(formatNumber(t))))
	}
	for _, t := range yr.ticks() {
		y := yr.scale(t, bottom, top)
		nodes = append(nodes, gomponents.El("text", html.Class("tick"),
			svgAttr("x", left-6), svgAttr("y", y+4), gomponents.Attr("text-anchor", "end"),
			gomponents.Text(formatNumber(t))))
	}
	nodes = append(nodes,
		gomponents.El("text", html.Class("label"),
			svgAttr("x", (left+right)/2), svgAttr("y", chartHeight-12), gomponents.Attr("text-anchor", "middle"),
			gomponents.Text(xLabel)),
		gomponents.El("text", html.Class("label"),
			gomponents.Attr("transform", fmt.Sprintf("translate(14 %.1f) rotate(-90)", (top+bottom)/2)),
			gomponents.Attr("text-anchor", "middle"),
			gomponents.Text(yLabel)),
	)
	for _, p := range points {
		nodes = append(nodes, gomponents.El("circle",
			svgAttr("cx", xr.scale(p.X, left, right)),
			svgAttr("cy", yr.scale(p.Y, bottom, top)),
			gomponents.Attr("r", strconv.Itoa(pointRadius)),
			data.Show(containsExpr(p.Name+" "+p.ISO3)),
			gomponents.El("title", gomponents.Text(fmt.Sprintf("%s (%d): %s, %s", p.Name, p.Time, formatNumber(p.X), formatNumber(p.Y)))),
		))
	}
	return gomponents.El("svg", nodes...)
}

// correlationText describes r. An undefined correlation is shown as NaN
// rather than hidden.
func correlationText(xLabel, yLabel string, r float64, pairs int) string {
	if math.IsNaN(r) {
		return fmt.Sprintf("Correlation between %s and %s: NaN (%d pairs)", xLabel, yLabel, pairs)
	}
	return fmt.Sprintf("Correlation between %s and %s: %.3f (%d pairs)", xLabel, yLabel, r, pairs)
}
