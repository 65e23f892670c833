package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"socio-dash/internal/domain"
)

// YearSelectionFromQuery reads ?time=&x=&y=. Absent values stay zero so Year
// applies its defaults.
func YearSelectionFromQuery(q url.Values) (YearSelection, error) {
	year, err := queryInt(q, "time")
	if err != nil {
		return YearSelection{}, err
	}
	return YearSelection{
		Year: year,
		X:    strings.TrimSpace(q.Get("x")),
		Y:    strings.TrimSpace(q.Get("y")),
	}, nil
}

// IndicatorSelectionFromQuery reads ?column=&group=&n=&seed=.
func IndicatorSelectionFromQuery(q url.Values) (IndicatorSelection, error) {
	sel := IndicatorSelection{Column: strings.TrimSpace(q.Get("column"))}
	if raw := strings.TrimSpace(q.Get("group")); raw != "" {
		// HTML checkboxes submit "on".
		if raw == "on" {
			sel.GroupAverage = true
		} else {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return IndicatorSelection{}, domain.ErrValidation("query parameter %q must be a boolean, got %q", "group", raw)
			}
			sel.GroupAverage = b
		}
	}
	n, err := queryInt(q, "n")
	if err != nil {
		return IndicatorSelection{}, err
	}
	sel.SampleSize = n
	if raw := strings.TrimSpace(q.Get("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return IndicatorSelection{}, domain.ErrValidation("query parameter %q must be a non-negative integer, got %q", "seed", raw)
		}
		sel.Seed = seed
	}
	return sel, nil
}

func queryInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrValidation("query parameter %q must be an integer, got %q", name, raw)
	}
	return n, nil
}
