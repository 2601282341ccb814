package jwtdecode

import (
	"fmt"
	"slices"
	"strings"
)

const (
	msgMissingAlg  = "JWT header must contain an algorithm (alg)"
	msgExpired     = "JWT has expired"
	msgNotYetValid = "JWT is not yet valid (before nbf time)"
	msgInvalidExp  = "JWT exp claim is not a valid numeric date"
	msgInvalidNbf  = "JWT nbf claim is not a valid numeric date"
)

// Validate runs every applicable check against tok and collects all failures;
// it never stops at the first one. Without opts, DefaultOptions is used.
//
// Checks, in the order their messages appear: alg presence, exp, nbf,
// issuer, audience. Expired and NotYetValid are false whenever the
// corresponding check is disabled.
//
// An exp or nbf claim that is present but not a numeric date fails its check
// with "JWT exp claim is not a valid numeric date" (or the nbf equivalent)
// rather than being ignored. Expired and NotYetValid stay false in that case.
func Validate(tok *Token, opts ...Options) ValidationResult {
	o := resolveOptions(opts)
	if tok == nil {
		tok = &Token{}
	}

	now := float64(o.now().Unix())
	skew := o.EffectiveClockSkew().Seconds()
	errs := []string{}

	if tok.Header.Alg() == "" {
		errs = append(errs, msgMissingAlg)
	}

	var expired, notYetValid bool
	if !o.SkipExp {
		switch exp, state := tok.Payload.numericDate("exp"); state {
		case claimValid:
			if now > float64(exp)+skew {
				expired = true
				errs = append(errs, msgExpired)
			}
		case claimInvalid:
			errs = append(errs, msgInvalidExp)
		}
	}

	if !o.SkipNbf {
		switch nbf, state := tok.Payload.numericDate("nbf"); state {
		case claimValid:
			if now < float64(nbf)-skew {
				notYetValid = true
				errs = append(errs, msgNotYetValid)
			}
		case claimInvalid:
			errs = append(errs, msgInvalidNbf)
		}
	}

	if o.ExpectedIssuer != "" {
		if msg, ok := checkIssuer(tok.Payload, o.ExpectedIssuer); !ok {
			errs = append(errs, msg)
		}
	}

	if len(o.ExpectedAudience) > 0 {
		if msg, ok := checkAudience(tok.Payload, o.ExpectedAudience); !ok {
			errs = append(errs, msg)
		}
	}

	return ValidationResult{
		Valid:       len(errs) == 0,
		Errors:      errs,
		Expired:     expired,
		NotYetValid: notYetValid,
	}
}

func checkIssuer(p Payload, expected string) (string, bool) {
	actual, present := p["iss"]
	if s, ok := actual.(string); ok && s == expected {
		return "", true
	}

	got := "<none>"
	if present {
		got = fmt.Sprintf("%v", actual)
	}
	return fmt.Sprintf("JWT issuer mismatch. Expected: %s, Got: %s", expected, got), false
}

func checkAudience(p Payload, expected []string) (string, bool) {
	actual := p.Audience()
	for _, want := range expected {
		if slices.Contains(actual, want) {
			return "", true
		}
	}
	return fmt.Sprintf("JWT audience mismatch. Expected one of: %s, Got: %s",
		formatList(expected), formatList(actual)), false
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
