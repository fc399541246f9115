// Package config loads loanprep settings from defaults, an optional YAML
// file, LOANPREP_* environment variables and bound command-line flags.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. LOANPREP_SPLIT_YEAR.
const EnvPrefix = "LOANPREP"

// Config is the complete loanprep configuration.
type Config struct {
	Input       InputConfig   `mapstructure:"input"`
	Output      OutputConfig  `mapstructure:"output"`
	Split       SplitConfig   `mapstructure:"split"`
	Logging     LoggingConfig `mapstructure:"logging"`
	MetricsFile string        `mapstructure:"metrics_file"`
}

// InputConfig describes the raw loan file.
type InputConfig struct {
	Path string `mapstructure:"path"`
	// Delimiter separates CSV fields. Freddie Mac files use "|".
	Delimiter string `mapstructure:"delimiter" validate:"len=1"`
	// Sheet selects the XLSX sheet; empty means the first one.
	Sheet string `mapstructure:"sheet"`
}

// OutputConfig controls where prepared features are written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=csv xlsx"`
}

// SplitConfig mirrors pipeline.Options plus the split year.
type SplitConfig struct {
	Year       int  `mapstructure:"year" validate:"gte=0"`
	PreProcess bool `mapstructure:"pre_process"`
	Tidy       bool `mapstructure:"tidy"`
	RequireAll bool `mapstructure:"require_all_fields"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:   InputConfig{Delimiter: ","},
		Output:  OutputConfig{Dir: ".", Format: "csv"},
		Split:   SplitConfig{Year: 2015},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key with v so that environment overrides
// reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("input.path", d.Input.Path)
	v.SetDefault("input.delimiter", d.Input.Delimiter)
	v.SetDefault("input.sheet", d.Input.Sheet)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", d.Output.Format)

	v.SetDefault("split.year", d.Split.Year)
	v.SetDefault("split.pre_process", d.Split.PreProcess)
	v.SetDefault("split.tidy", d.Split.Tidy)
	v.SetDefault("split.require_all_fields", d.Split.RequireAll)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("metrics_file", d.MetricsFile)
}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty file is read as YAML.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report config keys rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks c against its struct tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", configKey(fe.Namespace()), describe(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// configKey turns "Config.logging.level" into "logging.level".
func configKey(ns string) string {
	_, key, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %v)", fe.Param(), fe.Value())
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must have length %s (got %q)", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
