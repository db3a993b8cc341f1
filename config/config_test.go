package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nativegroup/gospi/core/logger"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `descriptors:
  dir: "native-services"
  roots:
    - "./resources"
    - "./extra"
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"dir", cfg.Descriptors.Dir, "native-services"},
		{"roots", len(cfg.Descriptors.Roots), 2},
		{"root[0]", cfg.Descriptors.Roots[0], "./resources"},
		{"level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}

	if reg := cfg.Registry(logger.NopLogger{}); reg == nil {
		t.Fatalf("nil registry")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `descriptors:
  roots:
    - "./resources"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Descriptors.Dir != "native-services" {
		t.Fatalf("default dir: got %q", cfg.Descriptors.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default level: got %q", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing roots")
	}

	bad := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(bad, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
