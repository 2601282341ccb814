package core

import (
	"errors"
)

var (
	// ErrEmptyToken is returned by SplitToken for an empty input.
	ErrEmptyToken = errors.New("token must be a non-empty string")

	// ErrSegmentCount is returned by SplitToken when the token does not have 2 or 3 segments.
	ErrSegmentCount = errors.New("token must have 2 or 3 parts separated by dots")

	// ErrInvalidBase64 is returned by DecodeBase64URL for malformed input.
	ErrInvalidBase64 = errors.New("invalid base64url encoding")

	// ErrNotObject is returned by ParseObject when the top-level JSON value is not an object.
	ErrNotObject = errors.New("top-level value must be a JSON object")
)

// Segments holds the raw dot-separated parts of a compact token.
type Segments struct {
	Header    string
	Payload   string
	Signature string
	Signed    bool // a third segment was present, possibly empty
}
