package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Kind != "memory" {
		t.Errorf("expected store kind memory, got %q", cfg.Store.Kind)
	}
	if cfg.Mapper.Kind != "lossless" {
		t.Errorf("expected mapper kind lossless, got %q", cfg.Mapper.Kind)
	}
	if cfg.Mapper.Options["wafer"] != "24" {
		t.Errorf("expected default wafer 24, got %q", cfg.Mapper.Options["wafer"])
	}
	if cfg.Sweep.Workers != 1 || cfg.Sweep.Mode != "inprocess" {
		t.Errorf("unexpected sweep defaults: %+v", cfg.Sweep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapbench.yaml")
	content := `
output_dir: results
store:
  kind: sqlite
  path: runs.db
logging:
  level: debug
mapper:
  kind: exec
  command: marocco-map
  args: [--json]
  timeout: 90s
  options:
    wafer: "20"
sweep:
  workers: 4
  mode: subprocess
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "results" {
		t.Errorf("expected output_dir results, got %q", cfg.OutputDir)
	}
	if cfg.Store.Kind != "sqlite" || cfg.Store.Path != "runs.db" {
		t.Errorf("unexpected store: %+v", cfg.Store)
	}
	if cfg.Mapper.Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", cfg.Mapper.Timeout)
	}
	if len(cfg.Mapper.Args) != 1 || cfg.Mapper.Args[0] != "--json" {
		t.Errorf("unexpected mapper args: %v", cfg.Mapper.Args)
	}
	if cfg.Mapper.Options["wafer"] != "20" {
		t.Errorf("expected wafer 20, got %q", cfg.Mapper.Options["wafer"])
	}
	if cfg.Sweep.Workers != 4 || cfg.Sweep.Mode != "subprocess" {
		t.Errorf("unexpected sweep: %+v", cfg.Sweep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected loaded config to validate: %v", err)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MAPBENCH_OUTPUT_DIR", "/tmp/out")
	t.Setenv("MAPBENCH_STORE_KIND", "sqlite")
	t.Setenv("MAPBENCH_STORE_PATH", "/tmp/out/runs.db")
	t.Setenv("MAPBENCH_LOG_LEVEL", "trace")
	t.Setenv("MAPBENCH_MAPPER_TIMEOUT", "2m")
	t.Setenv("MAPBENCH_MAPPER_OPTIONS", "wafer=21, placer=greedy,broken")
	t.Setenv("MAPBENCH_SWEEP_WORKERS", "8")
	t.Setenv("MAPBENCH_SWEEP_MODE", "subprocess")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.OutputDir != "/tmp/out" || cfg.Store.Kind != "sqlite" || cfg.Store.Path != "/tmp/out/runs.db" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("expected trace level, got %q", cfg.Logging.Level)
	}
	if cfg.Mapper.Timeout != 2*time.Minute {
		t.Errorf("expected 2m timeout, got %v", cfg.Mapper.Timeout)
	}
	if cfg.Mapper.Options["wafer"] != "21" || cfg.Mapper.Options["placer"] != "greedy" {
		t.Errorf("unexpected mapper options: %v", cfg.Mapper.Options)
	}
	if _, ok := cfg.Mapper.Options["broken"]; ok {
		t.Error("expected malformed option pair to be skipped")
	}
	if cfg.Sweep.Workers != 8 || cfg.Sweep.Mode != "subprocess" {
		t.Errorf("unexpected sweep overrides: %+v", cfg.Sweep)
	}
}

func TestApplyEnvIgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("MAPBENCH_SWEEP_WORKERS", "lots")
	t.Setenv("MAPBENCH_MAPPER_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Sweep.Workers != 1 {
		t.Errorf("expected default workers, got %d", cfg.Sweep.Workers)
	}
	if cfg.Mapper.Timeout != 0 {
		t.Errorf("expected zero timeout, got %v", cfg.Mapper.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad store", func(c *Config) { c.Store.Kind = "redis" }, "invalid store kind"},
		{"sqlite without path", func(c *Config) { c.Store.Kind = "sqlite" }, "store path"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"bad mapper", func(c *Config) { c.Mapper.Kind = "magic" }, "invalid mapper kind"},
		{"exec without command", func(c *Config) { c.Mapper.Kind = "exec" }, "mapper command"},
		{"negative timeout", func(c *Config) { c.Mapper.Timeout = -time.Second }, "timeout"},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -1 }, "workers"},
		{"bad mode", func(c *Config) { c.Sweep.Mode = "cluster" }, "invalid sweep mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
