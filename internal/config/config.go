// Package config provides configuration loading for mapbench.
// Values come from defaults, an optional YAML file and MAPBENCH_* environment
// variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mapbench/internal/logging"
)

// DefaultFile is read by Load when no explicit path is given and it exists.
const DefaultFile = "mapbench.yaml"

// Config contains all mapbench settings.
type Config struct {
	// OutputDir receives the per-run result files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Mapper  MapperConfig  `json:"mapper" yaml:"mapper"`
	Sweep   SweepConfig   `json:"sweep" yaml:"sweep"`
}

// StoreConfig selects the result store backend.
type StoreConfig struct {
	// Kind is "memory" or "sqlite". The sqlite backend needs the sqlite build tag.
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
}

// MapperConfig selects how networks are placed and routed.
type MapperConfig struct {
	// Kind is "lossless" or "exec".
	Kind string `json:"kind" yaml:"kind"`

	// Command and Args start the external mapping engine for kind exec.
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Timeout bounds a single mapping call. Zero disables it.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Options are forwarded to the engine (wafer, nsize, placer, ...).
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

type SweepConfig struct {
	Workers int `json:"workers" yaml:"workers"`
	// Mode is "inprocess" or "subprocess".
	Mode string `json:"mode" yaml:"mode"`
}

// Default returns a Config with the stock settings.
func Default() *Config {
	return &Config{
		OutputDir: ".",
		Store: StoreConfig{
			Kind: "memory",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Mapper: MapperConfig{
			Kind: "lossless",
			Options: map[string]string{
				"wafer":  "24",
				"nsize":  "4",
				"placer": "byNeuron",
			},
		},
		Sweep: SweepConfig{
			Workers: 1,
			Mode:    "inprocess",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// DefaultFile in the working directory when path is empty and the file
// exists), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Mapper.Command = os.ExpandEnv(cfg.Mapper.Command)
	cfg.Store.Path = os.ExpandEnv(cfg.Store.Path)
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validStores := map[string]bool{"memory": true, "sqlite": true}
	if !validStores[c.Store.Kind] {
		return fmt.Errorf("invalid store kind: %s (valid: memory, sqlite)", c.Store.Kind)
	}
	if c.Store.Kind == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store path is required for sqlite")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Mapper.Kind {
	case "lossless":
	case "exec":
		if c.Mapper.Command == "" {
			return fmt.Errorf("mapper command is required for kind exec")
		}
	default:
		return fmt.Errorf("invalid mapper kind: %s (valid: lossless, exec)", c.Mapper.Kind)
	}
	if c.Mapper.Timeout < 0 {
		return fmt.Errorf("mapper timeout must be non-negative, got %v", c.Mapper.Timeout)
	}

	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep workers must be non-negative, got %d", c.Sweep.Workers)
	}
	if c.Sweep.Mode != "inprocess" && c.Sweep.Mode != "subprocess" {
		return fmt.Errorf("invalid sweep mode: %s (valid: inprocess, subprocess)", c.Sweep.Mode)
	}
	return nil
}

// ApplyEnv applies MAPBENCH_* environment variable overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MAPBENCH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("MAPBENCH_STORE_KIND"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("MAPBENCH_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("MAPBENCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MAPBENCH_MAPPER_KIND"); v != "" {
		c.Mapper.Kind = v
	}
	if v := os.Getenv("MAPBENCH_MAPPER_COMMAND"); v != "" {
		c.Mapper.Command = v
	}
	if v := os.Getenv("MAPBENCH_MAPPER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Mapper.Timeout = d
		}
	}
	// MAPBENCH_MAPPER_OPTIONS takes comma separated key=value pairs.
	if v := os.Getenv("MAPBENCH_MAPPER_OPTIONS"); v != "" {
		if c.Mapper.Options == nil {
			c.Mapper.Options = make(map[string]string)
		}
		for _, pair := range strings.Split(v, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if ok && strings.TrimSpace(key) != "" {
				c.Mapper.Options[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
	if v := os.Getenv("MAPBENCH_SWEEP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sweep.Workers = n
		}
	}
	if v := os.Getenv("MAPBENCH_SWEEP_MODE"); v != "" {
		c.Sweep.Mode = v
	}
}
