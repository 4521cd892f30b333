package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, PresetStandard, cfg.Preset)
	assert.Equal(t, Size{Customers: 8, Employees: 3, Books: 12, Steps: 75}, cfg.Size())
	assert.Equal(t, 10, cfg.RuleInterval)
	assert.True(t, cfg.System.DiscountOffers)
	assert.True(t, cfg.System.RelayPurchases)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	require.NoError(t, cfg.Validate())
}

func TestPresets(t *testing.T) {
	tests := []struct {
		preset string
		want   Size
	}{
		{PresetQuick, Size{5, 2, 8, 30}},
		{PresetStandard, Size{8, 3, 12, 75}},
		{PresetFull, Size{12, 4, 18, 150}},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			cfg := Default()
			cfg.Preset = tt.preset
			cfg.Customers = 99
			cfg.Resolve()
			assert.Equal(t, tt.want, cfg.Size())
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestResolve_CustomKeepsCounts(t *testing.T) {
	cfg := Default()
	cfg.Preset = PresetCustom
	cfg.Customers, cfg.Employees, cfg.Books, cfg.Steps = 25, 8, 30, 300
	cfg.Resolve()

	assert.Equal(t, Size{25, 8, 30, 300}, cfg.Size())
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few customers", func(c *Config) { c.Customers = 2 }},
		{"too many customers", func(c *Config) { c.Customers = 26 }},
		{"no employees", func(c *Config) { c.Employees = 0 }},
		{"too many books", func(c *Config) { c.Books = 31 }},
		{"too few steps", func(c *Config) { c.Steps = 19 }},
		{"too many steps", func(c *Config) { c.Steps = 301 }},
		{"zero rule interval", func(c *Config) { c.RuleInterval = 0 }},
		{"negative delay", func(c *Config) { c.StepDelay = -time.Second }},
		{"unknown preset", func(c *Config) { c.Preset = "huge" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"empty service name", func(c *Config) { c.Telemetry.ServiceName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Preset = PresetCustom
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(`
preset: custom
customers: 4
employees: 2
books: 6
steps: 40
seed: 42
rule_interval: 5
step_delay: 250ms
system:
  discount_offers: false
logging:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, Size{4, 2, 6, 40}, cfg.Size())
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 5, cfg.RuleInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.StepDelay)
	assert.False(t, cfg.System.DiscountOffers)
	assert.True(t, cfg.System.RelayPurchases, "unset keys keep their defaults")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("customerz: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customerz")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, map[string]string{
		"STORESIM_PRESET":                 "quick",
		"STORESIM_SEED":                   "7",
		"STORESIM_STEP_DELAY":             "1s",
		"STORESIM_SYSTEM_RELAY_PURCHASES": "false",
		"STORESIM_LOG_LEVEL":              "warn",
		"STORESIM_OTEL_ENDPOINT":          "localhost:4318",
		"STORESIM_DB":                     "/tmp/runs.db",
	})
	require.NoError(t, err)

	assert.Equal(t, PresetQuick, cfg.Preset)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, time.Second, cfg.StepDelay)
	assert.False(t, cfg.System.RelayPurchases)
	assert.True(t, cfg.System.DiscountOffers)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "/tmp/runs.db", cfg.Database)
}

func TestApplyEnv_BadValue(t *testing.T) {
	err := ApplyEnv(Default(), map[string]string{"STORESIM_CUSTOMERS": "many"})
	require.Error(t, err)
}

func TestLoad_FileThenResolve(t *testing.T) {
	path := writeConfig(t, "preset: full\ncustomers: 3\nseed: 99\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Presets[PresetFull], cfg.Size())
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "preset: custom\ncustomers: 100\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParams(t *testing.T) {
	cfg := Default()
	cfg.Seed = 5
	cfg.System.DiscountOffers = false

	p := cfg.Params()
	assert.Equal(t, 8, p.Customers)
	assert.Equal(t, 3, p.Employees)
	assert.Equal(t, 12, p.Books)
	assert.Equal(t, int64(5), p.Seed)
	assert.Equal(t, 10, p.RuleInterval)
	assert.False(t, p.Desk.DiscountOffers)
	assert.True(t, p.Desk.RelayPurchases)
}
