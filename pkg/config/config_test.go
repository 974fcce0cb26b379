package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
	Keep string `yaml:"keep"`
}

var errPort = errors.New("bad port")

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errPort
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Setenv("DYNQR_TEST_NAME", "codes")
	fn := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(fn, []byte("name: ${DYNQR_TEST_NAME}\nport: 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := testConfig{Keep: "default"}
	if err := Load(fn, &c); err != nil {
		t.Fatal(err)
	}
	if c.Name != "codes" || c.Port != 8080 || c.Keep != "default" {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if err := Load(filepath.Join(dir, "missing.yaml"), &testConfig{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
	if err := Parse([]byte("port: [1"), &testConfig{}); err == nil {
		t.Error("bad YAML accepted")
	}
	if err := Parse([]byte("port: 0"), &testConfig{}); !errors.Is(err, errPort) {
		t.Errorf("validation error %v, want %v", err, errPort)
	}
}

func TestLoadOptional(t *testing.T) {
	c := testConfig{Port: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.yaml"), &c); err != nil {
		t.Fatal(err)
	}
	if c.Port != 1 {
		t.Errorf("config changed: %+v", c)
	}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.yaml"), &testConfig{}); !errors.Is(err, errPort) {
		t.Errorf("defaults not validated: %v", err)
	}
}
