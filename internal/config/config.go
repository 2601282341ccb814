// Package config loads the command line tool's settings from flags,
// JWTDECODE_* environment variables and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybergodev/jwtdecode"
	"github.com/cybergodev/jwtdecode/internal/logger"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "JWTDECODE"

// Config holds the CLI configuration.
type Config struct {
	ConfigFile  string `mapstructure:"config"`
	LogLevel    string `mapstructure:"log_level" default:"WARN" validate:"oneof=DEBUG INFO WARN ERROR"`
	Output      string `mapstructure:"output" default:"text" validate:"oneof=text json yaml"`
	NoColor     bool   `mapstructure:"no_color"`
	OptionsFile string `mapstructure:"options"`

	Issuer    string        `mapstructure:"issuer"`
	Audience  []string      `mapstructure:"audience" validate:"dive,required"`
	ClockSkew time.Duration `mapstructure:"clock_skew" default:"30s" validate:"gte=0"`
	SkipExp   bool          `mapstructure:"skip_exp"`
	SkipNbf   bool          `mapstructure:"skip_nbf"`
	Now       int64         `mapstructure:"now" validate:"gte=0"`

	clockSkewSet bool
}

// BindFlags binds every flag to the viper key of the same name with dashes replaced by underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load builds a Config from v, which should already have flags bound.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Config{}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		logger.Debug("loaded config file", "path", v.ConfigFileUsed())
	} else {
		v.SetConfigName(".jwtdecode")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			logger.Debug("loaded config file", "path", v.ConfigFileUsed())
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	cfg.clockSkewSet = v.IsSet("clock_skew")

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidationOptions turns the CLI settings into jwtdecode.Options. Values
// from the options file come first; flags and environment override them.
func (c *Config) ValidationOptions() (jwtdecode.Options, error) {
	opts := jwtdecode.DefaultOptions()

	if c.OptionsFile != "" {
		f, err := os.Open(c.OptionsFile)
		if err != nil {
			return jwtdecode.Options{}, fmt.Errorf("open options file: %w", err)
		}
		defer f.Close()

		opts, err = jwtdecode.LoadOptions(f)
		if err != nil {
			return jwtdecode.Options{}, fmt.Errorf("load options file %s: %w", c.OptionsFile, err)
		}
	}

	if c.OptionsFile == "" || c.clockSkewSet {
		opts.ClockSkew = jwtdecode.Skew(c.ClockSkew)
	}
	if c.Issuer != "" {
		opts.ExpectedIssuer = c.Issuer
	}
	if len(c.Audience) > 0 {
		opts.ExpectedAudience = jwtdecode.Audience(c.Audience)
	}
	if c.SkipExp {
		opts.SkipExp = true
	}
	if c.SkipNbf {
		opts.SkipNbf = true
	}
	if c.Now > 0 {
		opts.CurrentTime = time.Unix(c.Now, 0)
	}

	if err := opts.Validate(); err != nil {
		return jwtdecode.Options{}, err
	}
	return opts, nil
}
