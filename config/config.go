// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Fields    FieldsConfig    `yaml:"fields"`
	Fovea     FoveaConfig     `yaml:"fovea"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds substrate volume dimensions and grid resolution.
// Constructor arguments override these when given explicitly.
type WorldConfig struct {
	Width      float64 `yaml:"width"`      // world extent X in meters
	Height     float64 `yaml:"height"`     // world extent Y in meters
	Depth      float64 `yaml:"depth"`      // world extent Z in meters
	Resolution float64 `yaml:"resolution"` // cell edge length; coarser = faster
}

// FieldRateConfig overrides propagation rates for one field.
type FieldRateConfig struct {
	Name      string  `yaml:"name"`
	Diffusion float64 `yaml:"diffusion"`
	Decay     float64 `yaml:"decay"`
}

// FieldsConfig holds per-field propagation overrides.
type FieldsConfig struct {
	Rates []FieldRateConfig `yaml:"rates"`
}

// ShellConfig describes one foveated sensing shell.
type ShellConfig struct {
	RadiusInner float64 `yaml:"radius_inner"`
	RadiusOuter float64 `yaml:"radius_outer"`
	Sectors     int     `yaml:"sectors"`
}

// FoveaConfig holds the standing default shells used when a caller
// passes none.
type FoveaConfig struct {
	Shells []ShellConfig `yaml:"shells"`
}

// SimConfig holds entity simulation parameters.
type SimConfig struct {
	DT               float64 `yaml:"dt"`                // seconds per tick
	GridCellSize     float64 `yaml:"grid_cell_size"`    // spatial grid cell size
	SensorRange      float64 `yaml:"sensor_range"`      // contact detection range
	MaxContacts      int     `yaml:"max_contacts"`      // default observation contact slots
	ProjectileRadius float64 `yaml:"projectile_radius"` // detonation proximity
	ProjectileDamage float64 `yaml:"projectile_damage"` // damage at zero distance
	WorldWidth       float64 `yaml:"world_width"`       // arena extent X
	WorldHeight      float64 `yaml:"world_height"`      // arena extent Y
}

// TelemetryConfig holds experiment output settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	OutputDir   string  `yaml:"output_dir"`   // empty = disabled
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DT32           float32
	TicksPerWindow int32
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Sim.DT)
	ticks := int32(c.Telemetry.StatsWindow / c.Sim.DT)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.TicksPerWindow = ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
