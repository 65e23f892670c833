package ui

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/query"
)

func TestRangeOf(t *testing.T) {
	assert.Equal(t, axisRange{0, 1}, rangeOf(nil))
	assert.Equal(t, axisRange{4, 6}, rangeOf([]float64{5, 5}))

	r := rangeOf([]float64{0, 100})
	assert.InDelta(t, -5, r.min, 1e-9)
	assert.InDelta(t, 105, r.max, 1e-9)
	assert.InDelta(t, 10, r.scale(50, 0, 20), 1e-9)
	assert.Len(t, r.ticks(), chartTicks+1)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "30000", formatNumber(30000))
	assert.Equal(t, "8.5", formatNumber(8.5))
	assert.Equal(t, "0.3333", formatNumber(1.0/3))
}

func TestCorrelationText(t *testing.T) {
	assert.Equal(t, "Correlation between A and B: 0.500 (3 pairs)", correlationText("A", "B", 0.5, 3))
	assert.Equal(t, "Correlation between A and B: NaN (1 pairs)", correlationText("A", "B", math.NaN(), 1))
}

func TestScatterChart(t *testing.T) {
	var buf bytes.Buffer
	err := scatterChart([]query.Point{
		{ISO3: "AAA", Name: "Aland", Time: 2000, X: 1, Y: 2},
		{ISO3: "BBB", Name: "Bland", Time: 2000, X: 3, Y: 4},
	}, "GDP", "Life").Render(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<svg class="chart" viewBox="0 0 640 400"`)
	assert.Contains(t, out, "<title>Aland (2000): 1, 2</title>")
	assert.Contains(t, out, ">GDP</text>")
}

func TestContainsExpr_JSStringLiteral(t *testing.T) {
	assert.Equal(t, `$q === '' || "aland aaa".includes($q.toLowerCase())`, containsExpr("Aland AAA"))

	tests := []struct {
		in  string
		lit string
	}{
		{"Côte d'Ivoire CIV", `"côte d'ivoire civ"`},
		{"bell\x07 BEL", `"bell\u0007 bel"`},
		{"a\"b<c> QQQ", `"a\"b\u003cc\u003e qqq"`},
		{"line\u2028sep LSP", `"line\u2028sep lsp"`},
	}
	for _, tc := range tests {
		expr := containsExpr(tc.in)
		assert.Contains(t, expr, tc.lit+".includes(", tc.in)
		assert.NotContains(t, expr, `\x`, tc.in)
		assert.NotContains(t, expr, `\U`, tc.in)
	}
}
