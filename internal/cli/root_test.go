package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irsim.yaml")
	data := "api:\n  base_url: http://file:9000/api\n  token: from-file\nsession:\n  resume_delay: 1s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		wantURL   string
		wantToken string
		wantDebug bool
	}{
		{
			name:      "file only",
			args:      []string{"--config", path},
			wantURL:   "http://file:9000/api",
			wantToken: "from-file",
		},
		{
			name:      "flags win",
			args:      []string{"--config", path, "--url", "http://flag/api", "--token", "t", "--debug"},
			wantURL:   "http://flag/api",
			wantToken: "t",
			wantDebug: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, f := newRootCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := f.load(cmd)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.API.BaseURL != tt.wantURL {
				t.Errorf("base url = %q, want %q", cfg.API.BaseURL, tt.wantURL)
			}
			if cfg.API.Token != tt.wantToken {
				t.Errorf("token = %q, want %q", cfg.API.Token, tt.wantToken)
			}
			if cfg.Log.Debug != tt.wantDebug {
				t.Errorf("debug = %t, want %t", cfg.Log.Debug, tt.wantDebug)
			}
			if cfg.Session.ResumeDelay != time.Second {
				t.Errorf("resume delay = %v, want 1s", cfg.Session.ResumeDelay)
			}
		})
	}
}

func TestMissingConfigUsesDefaults(t *testing.T) {
	cmd, f := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.load(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8000/api" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
}

func TestMockCommandRegistered(t *testing.T) {
	cmd := NewRootCmd()
	sub, _, err := cmd.Find([]string{"mock"})
	if err != nil || sub.Name() != "mock" {
		t.Fatalf("mock command not found: %v", err)
	}
	for _, name := range []string{"host", "port", "token"} {
		if sub.Flags().Lookup(name) == nil {
			t.Errorf("mock is missing --%s", name)
		}
	}
}
