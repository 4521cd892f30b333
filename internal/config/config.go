// Package config loads simulation settings from defaults, an optional YAML
// file and STORESIM_* environment variables, then checks them against an
// embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storesim/internal/engine"
)

//go:embed schema.cue
var schemaSource string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STORESIM_"

// Preset names.
const (
	PresetQuick    = "quick"
	PresetStandard = "standard"
	PresetFull     = "full"
	PresetCustom   = "custom"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Size is a population and run length.
type Size struct {
	Customers int
	Employees int
	Books     int
	Steps     int
}

// Presets maps each named preset to its size. Custom has no entry.
var Presets = map[string]Size{
	PresetQuick:    {Customers: 5, Employees: 2, Books: 8, Steps: 30},
	PresetStandard: {Customers: 8, Employees: 3, Books: 12, Steps: 75},
	PresetFull:     {Customers: 12, Employees: 4, Books: 18, Steps: 150},
}

// Config contains all simulation settings.
type Config struct {
	// Preset selects a size. For anything but "custom" the preset
	// overwrites the four counts in Resolve.
	Preset string `json:"preset" yaml:"preset" env:"PRESET"`

	Customers int `json:"customers" yaml:"customers" env:"CUSTOMERS"`
	Employees int `json:"employees" yaml:"employees" env:"EMPLOYEES"`
	Books     int `json:"books" yaml:"books" env:"BOOKS"`
	Steps     int `json:"steps" yaml:"steps" env:"STEPS"`

	// Seed drives every random draw. 0 picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed" env:"SEED"`

	// RuleInterval is the step period of the rule engine.
	RuleInterval int `json:"rule_interval" yaml:"rule_interval" env:"RULE_INTERVAL"`

	// StepDelay paces Run; 0 runs as fast as possible.
	StepDelay time.Duration `json:"step_delay" yaml:"step_delay" env:"STEP_DELAY"`

	// Database is the SQLite path runs are saved to. Empty disables
	// persistence.
	Database string `json:"database" yaml:"database" env:"DB"`

	System    SystemConfig    `json:"system" yaml:"system" envPrefix:"SYSTEM_"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry" envPrefix:"OTEL_"`
}

// SystemConfig controls the orchestrator's use of the system mailbox.
type SystemConfig struct {
	DiscountOffers bool `json:"discount_offers" yaml:"discount_offers" env:"DISCOUNT_OFFERS"`
	RelayPurchases bool `json:"relay_purchases" yaml:"relay_purchases" env:"RELAY_PURCHASES"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" env:"LEVEL"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP host:port. Empty disables tracing.
	Endpoint    string `json:"endpoint" yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `json:"service_name" yaml:"service_name" env:"SERVICE_NAME"`
}

// Default returns a Config with the standard preset applied.
func Default() *Config {
	size := Presets[PresetStandard]
	return &Config{
		Preset:       PresetStandard,
		Customers:    size.Customers,
		Employees:    size.Employees,
		Books:        size.Books,
		Steps:        size.Steps,
		RuleInterval: engine.DefaultRuleInterval,
		System: SystemConfig{
			DiscountOffers: true,
			RelayPurchases: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "storesim",
		},
	}
}

// Load builds a Config: defaults, then the YAML file at path if path is
// non-empty, then environment overrides. The result is resolved and
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, err
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over Default. Unknown keys are errors.
// The result is neither resolved nor validated.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from STORESIM_* variables. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve copies the preset's size into the counts unless the preset is
// custom.
func (c *Config) Resolve() {
	size, ok := Presets[c.Preset]
	if !ok {
		return
	}
	c.Customers = size.Customers
	c.Employees = size.Employees
	c.Books = size.Books
	c.Steps = size.Steps
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}

// Size returns the resolved counts.
func (c *Config) Size() Size {
	return Size{Customers: c.Customers, Employees: c.Employees, Books: c.Books, Steps: c.Steps}
}

// Params converts the config to engine parameters.
func (c *Config) Params() engine.Params {
	return engine.Params{
		Customers:    c.Customers,
		Employees:    c.Employees,
		Books:        c.Books,
		Seed:         c.Seed,
		RuleInterval: c.RuleInterval,
		Desk: engine.DeskOptions{
			DiscountOffers: c.System.DiscountOffers,
			RelayPurchases: c.System.RelayPurchases,
		},
	}
}

// LogLevel maps Logging.Level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
