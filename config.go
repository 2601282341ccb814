package jwtdecode

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultClockSkew is the tolerance applied to exp and nbf unless Options.ClockSkew is set.
const DefaultClockSkew = 30 * time.Second

// Options controls which checks Validate performs. The zero value checks exp
// and nbf with DefaultClockSkew and expects no particular issuer or audience.
type Options struct {
	// SkipExp disables the expiration check
	SkipExp bool `yaml:"skip_exp" json:"skip_exp"`

	// SkipNbf disables the not-before check
	SkipNbf bool `yaml:"skip_nbf" json:"skip_nbf"`

	// ClockSkew is subtracted from nbf and added to exp before comparing with
	// the current time. nil means DefaultClockSkew; use Skew(0) for none.
	ClockSkew *time.Duration `yaml:"clock_skew,omitempty" json:"clock_skew,omitempty" validate:"omitnil,gte=0"`

	// ExpectedIssuer, when set, must equal the iss claim exactly
	ExpectedIssuer string `yaml:"expected_issuer" json:"expected_issuer"`

	// ExpectedAudience, when set, must share at least one value with the aud claim
	ExpectedAudience Audience `yaml:"expected_audience" json:"expected_audience" validate:"dive,required"`

	// CurrentTime overrides the wall clock; the zero value means time.Now
	CurrentTime time.Time `yaml:"current_time" json:"current_time"`
}

// DefaultOptions returns the zero Options: both time checks enabled with a 30 second clock skew.
func DefaultOptions() Options {
	return Options{}
}

// Skew returns a pointer to d for Options.ClockSkew.
func Skew(d time.Duration) *time.Duration {
	return &d
}

// EffectiveClockSkew returns ClockSkew, or DefaultClockSkew when it is unset.
func (o Options) EffectiveClockSkew() time.Duration {
	if o.ClockSkew == nil {
		return DefaultClockSkew
	}
	return *o.ClockSkew
}

// Validate checks the options and returns a *ValidationError for the first invalid field.
func (o *Options) Validate() error {
	if o == nil {
		return ErrInvalidOptions
	}

	if err := optionsValidator.Struct(o); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
				Err:     ErrInvalidOptions,
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// clone returns a copy that shares no memory with o.
func (o Options) clone() Options {
	if o.ClockSkew != nil {
		o.ClockSkew = Skew(*o.ClockSkew)
	}
	o.ExpectedAudience = append(Audience(nil), o.ExpectedAudience...)
	return o
}

func (o Options) now() time.Time {
	if o.CurrentTime.IsZero() {
		return time.Now()
	}
	return o.CurrentTime
}

// LoadOptions reads YAML options on top of DefaultOptions. Durations use Go
// syntax ("45s"), and expected_audience accepts a string or a list.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Audience is a list of acceptable audience values. In YAML it may be
// written as a single string.
type Audience []string

// UnmarshalYAML implements yaml.Unmarshaler
func (a *Audience) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*a = nil
			return nil
		}
		*a = Audience{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*a = list
		return nil
	default:
		return fmt.Errorf("line %d: audience must be a string or a list of strings", value.Line)
	}
}

var optionsValidator = newOptionsValidator()

func newOptionsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func resolveOptions(opts []Options) Options {
	if len(opts) == 0 {
		return DefaultOptions()
	}
	return opts[0]
}
