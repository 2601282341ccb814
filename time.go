package jwtdecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// NumericDate represents a JSON numeric date value as specified in RFC 7519:
// seconds since the Unix epoch, possibly fractional.
type NumericDate float64

// Unix returns the date floored to whole seconds, clamped to the int64 range.
func (d NumericDate) Unix() int64 {
	f := math.Floor(float64(d))
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Time converts the date to a time.Time in UTC. Dates beyond the int64
// range of seconds are clamped.
func (d NumericDate) Time() time.Time {
	sec := d.Unix()
	var nsec int64
	if float64(sec) == math.Floor(float64(d)) {
		nsec = int64((float64(d) - math.Floor(float64(d))) * 1e9)
	}
	return time.Unix(sec, nsec).UTC()
}

func (d NumericDate) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

type claimState int

const (
	claimAbsent claimState = iota
	claimValid
	claimInvalid
)

// numericDate reads a date claim. JSON null counts as absent; numbers and
// numeric strings are accepted.
func (p Payload) numericDate(name string) (NumericDate, claimState) {
	v, ok := p[name]
	if !ok || v == nil {
		return 0, claimAbsent
	}

	d, err := toNumericDate(v)
	if err != nil {
		return 0, claimInvalid
	}
	return d, claimValid
}

func toNumericDate(v any) (NumericDate, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid numeric date %q: %w", n, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric date %q: %w", n, err)
		}
		f = parsed
	case time.Time:
		return NumericDate(n.Unix()), nil
	default:
		return 0, fmt.Errorf("invalid numeric date type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid numeric date %v", f)
	}
	return NumericDate(f), nil
}
