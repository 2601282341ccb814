package jwtdecode

// Header represents the decoded JOSE header of a token.
// Values keep their JSON types: string, float64, bool, nil, []any or map[string]any.
type Header map[string]any

// Alg returns the signing algorithm identifier ("alg"), or "" if absent or not a string.
func (h Header) Alg() string { return stringValue(h, "alg") }

// Type returns the "typ" header parameter.
func (h Header) Type() string { return stringValue(h, "typ") }

// KeyID returns the "kid" header parameter.
func (h Header) KeyID() string { return stringValue(h, "kid") }

// ContentType returns the "cty" header parameter.
func (h Header) ContentType() string { return stringValue(h, "cty") }

// Critical returns the "crit" header parameter names.
func (h Header) Critical() []string { return stringList(h["crit"]) }

// Payload represents the decoded claims set of a token.
type Payload map[string]any

// Get returns the raw value of a claim.
func (p Payload) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// String returns a claim as a string, or "" if absent or of another type.
func (p Payload) String(name string) string { return stringValue(p, name) }

// Issuer returns the "iss" claim.
func (p Payload) Issuer() string { return stringValue(p, "iss") }

// Subject returns the "sub" claim.
func (p Payload) Subject() string { return stringValue(p, "sub") }

// ID returns the "jti" claim.
func (p Payload) ID() string { return stringValue(p, "jti") }

// Audience returns the "aud" claim normalized to a list.
// A single string becomes a one-element list; an absent or empty claim yields nil.
func (p Payload) Audience() []string {
	switch v := p["aud"].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return stringList(v)
	}
}

// ExpiresAt returns the "exp" claim. ok is false if absent or not a numeric date.
func (p Payload) ExpiresAt() (NumericDate, bool) { return p.Date("exp") }

// NotBefore returns the "nbf" claim. ok is false if absent or not a numeric date.
func (p Payload) NotBefore() (NumericDate, bool) { return p.Date("nbf") }

// IssuedAt returns the "iat" claim. ok is false if absent or not a numeric date.
func (p Payload) IssuedAt() (NumericDate, bool) { return p.Date("iat") }

// Date returns the named claim as a NumericDate. ok is false when the claim
// is absent, null, or not a numeric date.
func (p Payload) Date(name string) (NumericDate, bool) {
	d, state := p.numericDate(name)
	return d, state == claimValid
}

// Token is a decoded, unverified JWT.
type Token struct {
	Header  Header
	Payload Payload
	Raw     string

	signature string
	signed    bool
}

// Signature returns the third segment verbatim. ok is false for a
// two-segment token, which is distinct from an empty third segment.
func (t *Token) Signature() (string, bool) {
	return t.signature, t.signed
}

// ValidationResult reports the outcome of Validate.
type ValidationResult struct {
	Valid       bool     `json:"isValid" yaml:"is_valid"`
	Errors      []string `json:"errors" yaml:"errors"`
	Expired     bool     `json:"isExpired" yaml:"is_expired"`
	NotYetValid bool     `json:"isNotYetValid" yaml:"is_not_yet_valid"`
}

// Result is the combined output of DecodeAndValidate.
type Result struct {
	Token *Token `json:"-" yaml:"-"`
	ValidationResult
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringList(v any) []string {
	switch v := v.(type) {
	case []string:
		if len(v) == 0 {
			return nil
		}
		return append([]string(nil), v...)
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
