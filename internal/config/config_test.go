package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "irsim.yaml")

	yaml := `
api:
  base_url: "http://trainer.local/api"
  token: "s3cret"
session:
  resume_delay: 500ms
charts:
  capacity: 40
mock:
  port: 9000
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.BaseURL != "http://trainer.local/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "s3cret" {
		t.Errorf("API.Token = %q", cfg.API.Token)
	}
	if cfg.Session.ResumeDelay != 500*time.Millisecond {
		t.Errorf("Session.ResumeDelay = %v, want 500ms", cfg.Session.ResumeDelay)
	}
	if cfg.Charts.Capacity != 40 {
		t.Errorf("Charts.Capacity = %d, want 40", cfg.Charts.Capacity)
	}
	if got := cfg.MockAddr(); got != "127.0.0.1:9000" {
		t.Errorf("MockAddr() = %q", got)
	}

	// Defaults should still be applied for unspecified fields.
	if cfg.API.Timeout != DefaultTimeout {
		t.Errorf("API.Timeout = %v, want default", cfg.API.Timeout)
	}
	if cfg.Log.Path != DefaultLogPath {
		t.Errorf("Log.Path = %q, want default", cfg.Log.Path)
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "irsim.yaml")
	yaml := `
api:
  base_url: ""
  timeout: -1s
charts:
  capacity: 0
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL || cfg.API.Timeout != DefaultTimeout || cfg.Charts.Capacity != DefaultChartPoints {
		t.Errorf("bad values not normalized: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/irsim.yaml")
	if err == nil {
		t.Fatal("Load() on missing file should return error")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/irsim.yaml"} {
		cfg, err := LoadOrDefault(path)
		if err != nil {
			t.Fatalf("LoadOrDefault(%q) error: %v", path, err)
		}
		if cfg.API.BaseURL != DefaultBaseURL {
			t.Errorf("API.BaseURL = %q, want default", cfg.API.BaseURL)
		}
		if cfg.Session.ResumeDelay != DefaultResumeDelay {
			t.Errorf("Session.ResumeDelay = %v, want default", cfg.Session.ResumeDelay)
		}
		if cfg.MockAddr() != "127.0.0.1:8000" {
			t.Errorf("MockAddr() = %q", cfg.MockAddr())
		}
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte(":::not valid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("Load() with invalid YAML should return error")
	}
	if _, err := LoadOrDefault(cfgPath); err == nil {
		t.Fatal("LoadOrDefault() with invalid YAML should return error")
	}
}
