package jwtdecode

import (
	"errors"
	"fmt"
	"strings"
)

// Decode error kinds. A *DecodeError always matches exactly one of them with errors.Is.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBase64Decode   = errors.New("invalid base64url encoding")
	ErrClaimParse     = errors.New("failed to parse claims")
)

// Options errors
var (
	ErrInvalidOptions = errors.New("invalid validation options")
)

// DecodeError is returned by Decode and every function built on it.
type DecodeError struct {
	Kind    error  // ErrMalformedToken, ErrBase64Decode or ErrClaimParse
	Segment string // "header", "payload" or "" when the whole token is at fault
	Err     error  // underlying cause
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("failed to decode JWT: ")
	if e.Segment != "" {
		b.WriteString(e.Segment)
		b.WriteString(" segment: ")
	}
	if e.Kind == ErrClaimParse || e.Err == nil {
		b.WriteString(e.Kind.Error())
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ValidationError represents an invalid field in Options.
type ValidationError struct {
	Field   string // The field that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for field '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
