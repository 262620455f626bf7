// Package config loads the trainer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL     = "http://127.0.0.1:8000/api"
	DefaultTimeout     = 10 * time.Second
	DefaultResumeDelay = 3 * time.Second
	DefaultChartPoints = 20
	DefaultLogPath     = "/tmp/irsim.log"
	DefaultMockHost    = "127.0.0.1"
	DefaultMockPort    = 8000
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Charts  ChartsConfig  `yaml:"charts"`
	Log     LogConfig     `yaml:"log"`
	Mock    MockConfig    `yaml:"mock"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	// ResumeDelay is how long decision feedback stays up before the
	// timeline continues.
	ResumeDelay time.Duration `yaml:"resume_delay"`
}

type ChartsConfig struct {
	Capacity int `yaml:"capacity"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

type MockConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Session: SessionConfig{ResumeDelay: DefaultResumeDelay},
		Charts:  ChartsConfig{Capacity: DefaultChartPoints},
		Log:     LogConfig{Path: DefaultLogPath},
		Mock:    MockConfig{Host: DefaultMockHost, Port: DefaultMockPort},
	}
}

// Default returns the built-in configuration.
func Default() *Config { return defaultConfig() }

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
// An empty path also yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// normalize replaces zero or negative values with defaults.
func (c *Config) normalize() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.Session.ResumeDelay < 0 {
		c.Session.ResumeDelay = DefaultResumeDelay
	}
	if c.Charts.Capacity <= 0 {
		c.Charts.Capacity = DefaultChartPoints
	}
	if c.Mock.Host == "" {
		c.Mock.Host = DefaultMockHost
	}
	if c.Mock.Port <= 0 {
		c.Mock.Port = DefaultMockPort
	}
}

// MockAddr is the listen address of the mock API.
func (c *Config) MockAddr() string {
	return fmt.Sprintf("%s:%d", c.Mock.Host, c.Mock.Port)
}
