package domain

import (
	"encoding/base64"
	"strconv"
)

// DefaultMaxResults is the page size when none is given.
const DefaultMaxResults = 100

// MaxMaxResults is the largest page size accepted.
const MaxMaxResults = 1000

// PageRequest holds the pagination parameters of a row listing.
type PageRequest struct {
	MaxResults int
	PageToken  string // opaque, base64-encoded row offset
}

// Offset decodes the page token. An empty token is offset 0; a token that
// was not produced by EncodePageToken is a ValidationError.
func (p PageRequest) Offset() (int, error) {
	if p.PageToken == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0, ErrValidation("invalid page token %q", p.PageToken)
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return 0, ErrValidation("invalid page token %q", p.PageToken)
	}
	return offset, nil
}

// Limit returns the effective page size, clamped to [1, MaxMaxResults].
func (p PageRequest) Limit() int {
	if p.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return min(p.MaxResults, MaxMaxResults)
}

// Window returns the half-open row range [start, end) of this page over
// total rows and the token of the following page, empty on the last page.
func (p PageRequest) Window(total int) (start, end int, next string, err error) {
	start, err = p.Offset()
	if err != nil {
		return 0, 0, "", err
	}
	start = min(start, total)
	end = min(start+p.Limit(), total)
	if end < total {
		next = EncodePageToken(end)
	}
	return start, end, next, nil
}

// EncodePageToken creates an opaque page token from an offset. Offset 0
// encodes as the empty token.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
