package jwtdecode

import (
	"math"
	"time"
)

// maxDurationSeconds is the largest whole number of seconds a time.Duration can hold.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// DecodeAndValidate decodes token and validates it. A decode failure is
// returned as an error with no partial result.
func DecodeAndValidate(token string, opts ...Options) (*Result, error) {
	tok, err := Decode(token)
	if err != nil {
		return nil, err
	}
	return &Result{Token: tok, ValidationResult: Validate(tok, opts...)}, nil
}

// IsExpired reports whether token's exp claim has passed, allowing for
// clockSkew (default 30s). A token that cannot be decoded, or whose exp is
// not a numeric date, is reported as expired. A token without exp never expires.
func IsExpired(token string, clockSkew ...time.Duration) bool {
	skew := DefaultClockSkew
	if len(clockSkew) > 0 {
		skew = clockSkew[0]
	}
	return isExpiredAt(token, skew, time.Now())
}

// TimeUntilExpiration returns the whole seconds left before token's exp, never
// negative and capped at the largest time.Duration. ok is false only when the
// token decodes and has no exp claim; an undecodable token reports (0, true).
func TimeUntilExpiration(token string) (remaining time.Duration, ok bool) {
	return timeUntilExpirationAt(token, time.Now())
}

func isExpiredAt(token string, skew time.Duration, now time.Time) bool {
	tok, err := Decode(token)
	if err != nil {
		return true
	}

	exp, state := tok.Payload.numericDate("exp")
	switch state {
	case claimAbsent:
		return false
	case claimInvalid:
		return true
	}
	return float64(now.Unix()) > float64(exp)+skew.Seconds()
}

func timeUntilExpirationAt(token string, now time.Time) (time.Duration, bool) {
	tok, err := Decode(token)
	if err != nil {
		return 0, true
	}

	exp, state := tok.Payload.numericDate("exp")
	switch state {
	case claimAbsent:
		return 0, false
	case claimInvalid:
		return 0, true
	}

	left := math.Floor(float64(exp) - float64(now.Unix()))
	if !(left > 0) {
		return 0, true
	}
	if left >= float64(maxDurationSeconds) {
		return time.Duration(maxDurationSeconds) * time.Second, true
	}
	return time.Duration(left) * time.Second, true
}
