package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testCfg struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedCfg struct {
	Port int `yaml:"port"`
}

func (c *validatedCfg) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "name: othala\nport: 8080\n")

	var cfg testCfg
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "othala" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("OTHALA_TEST_NAME", "from-env")
	path := writeConfig(t, "name: ${OTHALA_TEST_NAME}\n")

	var cfg testCfg
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", cfg.Name)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "name: x\nprot: 8080\n")

	var cfg testCfg
	if err := Load(path, &cfg); err == nil {
		t.Error("misspelled key should fail to load")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeConfig(t, "port: -1\n")

	var cfg validatedCfg
	err := Load(path, &cfg)
	if err == nil {
		t.Fatal("invalid config should fail")
	}

	path = writeConfig(t, "port: 8080\n")
	if err := Load(path, &cfg); err != nil {
		t.Errorf("valid config failed: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testCfg
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Error("missing file should fail to load")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	fallback := writeConfig(t, "name: fallback\n")

	var cfg testCfg
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if err := LoadWithDefaults(missing, fallback, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("Name = %q, want fallback", cfg.Name)
	}

	if err := LoadWithDefaults(missing, "", &cfg); err == nil {
		t.Error("missing file without fallback should fail")
	}
}
