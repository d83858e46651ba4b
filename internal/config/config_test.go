package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("env: got %q, want development", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want 8080", cfg.Port)
	}
	if cfg.DefaultQuality != 75 {
		t.Errorf("default quality: got %d, want 75", cfg.DefaultQuality)
	}
	if cfg.MaxInputBytes != 64<<20 {
		t.Errorf("max input: got %d, want %d", cfg.MaxInputBytes, 64<<20)
	}
	if cfg.FetchTimeout != 20*time.Second {
		t.Errorf("fetch timeout: got %v, want 20s", cfg.FetchTimeout)
	}
	if cfg.Tunables == nil || cfg.Tunables.AVIFDimensionLimit != 16384 {
		t.Error("tunables should default to the production planning constants")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEFAULT_QUALITY", "50")
	t.Setenv("MAX_INPUT_MB", "8")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("env: got %q, want production", cfg.Env)
	}
	if cfg.DefaultQuality != 50 {
		t.Errorf("default quality: got %d, want 50", cfg.DefaultQuality)
	}
	if cfg.MaxInputBytes != 8<<20 {
		t.Errorf("max input: got %d", cfg.MaxInputBytes)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad env", func(c *Config) { c.Env = "staging" }},
		{"quality too high", func(c *Config) { c.DefaultQuality = 101 }},
		{"quality too low", func(c *Config) { c.DefaultQuality = 0 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentEncodes = 0 }},
		{"zero input cap", func(c *Config) { c.MaxInputBytes = 0 }},
	}
	for _, c := range cases {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("%s: Load failed: %v", c.name, err)
		}
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: want validation error", c.name)
		}
	}
}
