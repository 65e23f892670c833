// Package dataset provides the in-memory tabular model shared by the
// normalizer, the join assembler and the query layer.
package dataset

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a Value holds.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single nullable cell.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null is the missing value.
var Null = Value{}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a text value. An empty string is still a present value;
// use ParseValue to map blanks to Null.
func String(s string) Value { return Value{kind: KindString, str: s} }

// nullTokens are spellings the public datasets use for a missing cell.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"..":   {},
	"null": {},
	"NULL": {},
}

// ParseValue converts a raw delimited-text cell into a Value. Numbers that
// are not finite (Inf, Infinity, overflowing exponents, any NaN spelling)
// are Null.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := nullTokens[s]; ok {
		return Null
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return String(s)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Null
	}
	return Number(f)
}

// ParseText converts a raw cell into a Value that is never numeric.
// Identifier columns such as iso3 or name go through here.
func ParseText(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := nullTokens[s]; ok {
		return Null
	}
	return String(s)
}

// Kind reports the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric value. ok is false for null and string values.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return math.NaN(), false
	}
	return v.num, true
}

// Int returns the value as an integer when it is a whole number.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Text returns the textual form of the value. Null renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
// NaN numbers compare equal to each other so that tables holding
// pass-through NaN results still compare equal across runs.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) && math.IsNaN(o.num) {
			return true
		}
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

// Any returns the value as an interface suitable for JSON encoding or
// database parameters: nil, float64 or string.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

// MarshalJSON encodes null as JSON null, numbers as JSON numbers and
// strings as JSON strings. NaN and infinities have no JSON form and are
// encoded as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}
