// Package config loads the fluidc configuration file.
//
// The file lives at $XDG_CONFIG_HOME/fluidc/config.toml unless --config or
// FLUIDC_CONFIG names another path. Every section is optional:
//
//	[defaults]
//	k = 2
//	variant = "fluidc_plus"
//	tie_break = "largest"
//	seed = 42
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	namespace = "staging:"
//
//	[history]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override values from the file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// EnvPath overrides the default config file location.
const EnvPath = "FLUIDC_CONFIG"

// Config is the parsed configuration file.
type Config struct {
	Defaults Defaults      `toml:"defaults"`
	Cache    CacheConfig   `toml:"cache"`
	History  HistoryConfig `toml:"history"`
	Server   ServerConfig  `toml:"server"`
}

// Defaults holds detection defaults applied when a flag or request field is
// unset.
type Defaults struct {
	K         int     `toml:"k" validate:"gte=0"`
	Seed      *uint64 `toml:"seed,omitempty"`
	MaxRounds int     `toml:"max_rounds" validate:"gte=0"`
	Variant   string  `toml:"variant" validate:"omitempty,variant"`
	TieBreak  string  `toml:"tie_break" validate:"omitempty,tiebreak"`
	Order     string  `toml:"order" validate:"omitempty,order"`
	Refine    bool    `toml:"refine"`
	Trials    int     `toml:"trials" validate:"gte=1,lte=1000"`
	Parallel  int     `toml:"parallel" validate:"gte=0"`
	Format    string  `toml:"format" validate:"omitempty,oneof=json yaml csv dot svg png pdf"`
}

// CacheConfig selects the result cache backend. RedisURL wins over Dir.
type CacheConfig struct {
	Disabled  bool   `toml:"disabled"`
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url" validate:"omitempty,url"`
	Namespace string `toml:"namespace" validate:"max=64"`
}

// HistoryConfig selects the run history backend. MongoURI wins over Dir.
type HistoryConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri" validate:"omitempty,url"`
	Database string `toml:"database" validate:"required_with=MongoURI,max=64"`
}

// ServerConfig configures `fluidc serve`.
type ServerConfig struct {
	Addr           string        `toml:"addr" validate:"required,hostname_port"`
	RequestTimeout time.Duration `toml:"request_timeout" validate:"gte=0"`
	MaxBodyBytes   int64         `toml:"max_body_bytes" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Trials: pipeline.DefaultTrials,
			Format: pipeline.FormatJSON,
		},
		History: HistoryConfig{Database: "fluidc"},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 2 * time.Minute,
			MaxBodyBytes:   32 << 20,
		},
	}
}

// DefaultPath returns FLUIDC_CONFIG if set, else
// $XDG_CONFIG_HOME/fluidc/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "fluidc", "config.toml"), nil
}

// Load reads the config file at path. An empty path means DefaultPath, and a
// missing default file yields Default. A missing explicit file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return Default(), nil
			}
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ApplyTo fills unset detection options from the defaults section. Refine is
// left to the caller, which knows whether a flag set it explicitly.
func (d Defaults) ApplyTo(o *pipeline.Options) {
	if o.K == 0 {
		o.K = d.K
	}
	if o.Seed == nil && d.Seed != nil {
		seed := *d.Seed
		o.Seed = &seed
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = d.MaxRounds
	}
	if o.Variant == "" {
		o.Variant = d.Variant
	}
	if o.TieBreak == "" {
		o.TieBreak = d.TieBreak
	}
	if o.Order == "" {
		o.Order = d.Order
	}
}

// =============================================================================
// Validation
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	register := func(tag string, parse func(string) error) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return parse(fl.Field().String()) == nil
		})
	}
	register("variant", func(s string) error { _, err := fluid.ParseVariant(s); return err })
	register("tiebreak", func(s string) error { _, err := fluid.ParseTieBreak(s); return err })
	register("order", func(s string) error { _, err := fluid.ParseOrder(s); return err })
	return v
}

// formatValidationError reports the first failed constraint by its TOML key.
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	e := verrs[0]
	key := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required", "required_with":
		return errors.New(errors.ErrCodeInvalidConfig, "%s is required", key)
	case "gte", "lte", "max":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must satisfy %s=%s, got %v", key, e.Tag(), e.Param(), e.Value())
	case "oneof":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must be one of [%s], got %q", key, e.Param(), e.Value())
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "%s: invalid %s %q", key, e.Tag(), e.Value())
	}
}
