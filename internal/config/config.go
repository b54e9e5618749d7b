// Package config loads the optional YAML configuration file that holds
// logging settings, physics constants and process-wide caps. Every field
// has a sane default; a missing or absent config file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration object.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Limits  LimitsConfig  `yaml:"limits"`
	Physics PhysicsDefaults `yaml:"physics"`
}

// LoggingConfig controls internal/dlog's output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LimitsConfig records node and lattice-cell caps. Nothing reads these
// fields: the engines enforce their own fixed caps (cellular.MaxNodes,
// igsoa.MaxCells, satp.MaxCells) regardless of the loaded values.
type LimitsConfig struct {
	MaxNodes        int `yaml:"max_nodes"`
	MaxLatticeCells int `yaml:"max_lattice_cells"`
}

// PhysicsDefaults holds IGSOA/SATP physics constants. The router does not
// receive the loaded config: a create_engine call that omits a constant
// gets it from igsoa.DefaultParams or satp.DefaultParams, whose values
// match the ones built in here.
type PhysicsDefaults struct {
	IGSOARc    float64 `yaml:"igsoa_rc"`
	IGSOAKappa float64 `yaml:"igsoa_kappa"`
	IGSOAGamma float64 `yaml:"igsoa_gamma"`
	IGSOADt    float64 `yaml:"igsoa_dt"`

	SATPDx float64 `yaml:"satp_dx"`
	SATPDt float64 `yaml:"satp_dt"`
}

// Default returns the built-in configuration used when no config file is
// supplied.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Limits: LimitsConfig{
			MaxNodes:        1 << 20,
			MaxLatticeCells: 1 << 20,
		},
		Physics: PhysicsDefaults{
			IGSOARc:    4.0,
			IGSOAKappa: 1.0,
			IGSOAGamma: 0.1,
			IGSOADt:    0.01,
			SATPDx:     0.1,
			SATPDt:     0.001,
		},
	}
}

// Load reads a YAML config file at path, overlaying it on Default(). An
// empty path returns Default() unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
