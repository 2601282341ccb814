package jwtdecode

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Inspector decodes and validates tokens against a fixed set of Options.
// It holds no mutable state and is safe for concurrent use.
type Inspector struct {
	opts   Options
	logger *slog.Logger
}

// NewInspector creates an Inspector with optional configuration (DefaultOptions if omitted)
func NewInspector(config ...Options) (*Inspector, error) {
	return NewInspectorWithLogger(nil, config...)
}

// NewInspectorWithLogger creates an Inspector that logs decode and validation failures at debug level
func NewInspectorWithLogger(logger *slog.Logger, config ...Options) (*Inspector, error) {
	opts := resolveOptions(config).clone()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("options validation failed: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Inspector{
		opts:   opts,
		logger: logger,
	}, nil
}

// Options returns a copy of the inspector's options
func (i *Inspector) Options() Options {
	return i.opts.clone()
}

// Decode decodes token without validating it
func (i *Inspector) Decode(token string) (*Token, error) {
	tok, err := Decode(token)
	if err != nil {
		i.logger.Debug("token decode failed", "error", err)
		return nil, err
	}
	return tok, nil
}

// Validate validates an already decoded token
func (i *Inspector) Validate(tok *Token) ValidationResult {
	res := Validate(tok, i.opts)
	if !res.Valid {
		i.logger.Debug("token validation failed",
			"errors", res.Errors,
			"expired", res.Expired,
			"not_yet_valid", res.NotYetValid,
		)
	}
	return res
}

// DecodeAndValidate decodes and validates token
func (i *Inspector) DecodeAndValidate(token string) (*Result, error) {
	tok, err := i.Decode(token)
	if err != nil {
		return nil, err
	}
	return &Result{Token: tok, ValidationResult: i.Validate(tok)}, nil
}

// IsExpired is IsExpired using the inspector's clock skew and clock
func (i *Inspector) IsExpired(token string) bool {
	return isExpiredAt(token, i.opts.EffectiveClockSkew(), i.opts.now())
}

// TimeUntilExpiration is TimeUntilExpiration using the inspector's clock
func (i *Inspector) TimeUntilExpiration(token string) (time.Duration, bool) {
	return timeUntilExpirationAt(token, i.opts.now())
}
