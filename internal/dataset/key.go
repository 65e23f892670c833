package dataset

import "fmt"

// Key is the compound (country, year) key every source is joined on.
type Key struct {
	ISO3 string
	Time int
}

// Less orders keys by iso3, then by year.
func (k Key) Less(o Key) bool {
	if k.ISO3 != o.ISO3 {
		return k.ISO3 < o.ISO3
	}
	return k.Time < o.Time
}

// Compare returns -1, 0 or +1, for use with slices.SortFunc.
func (k Key) Compare(o Key) int {
	switch {
	case k.Less(o):
		return -1
	case o.Less(k):
		return 1
	default:
		return 0
	}
}

func (k Key) String() string { return fmt.Sprintf("%s/%d", k.ISO3, k.Time) }
