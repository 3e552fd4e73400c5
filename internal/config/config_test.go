package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("PORT", "8080")
	t.Setenv("GENERATOR_URL", "http://localhost:3000/generate-bio")
	t.Setenv("GENERATOR_TIMEOUT", "60s")
	t.Setenv("SESSION_TTL", "60m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "5m")
	t.Setenv("CLIPBOARD_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Generator.Timeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.Generator.Timeout)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Expected 1h TTL, got %v", cfg.Session.TTL)
	}
	if !cfg.ClipboardEnabled {
		t.Error("Expected clipboard enabled")
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode without FRONTEND_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "https://bio.example.com")
	t.Setenv("GENERATOR_URL", "https://api.example.com/generate-bio")
	t.Setenv("GENERATOR_TIMEOUT", "15")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "1m")
	t.Setenv("CLIPBOARD_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.Generator.Timeout != 15*time.Second {
		t.Errorf("Expected 15s, got %v", cfg.Generator.Timeout)
	}
	if cfg.ClipboardEnabled {
		t.Error("Expected clipboard disabled")
	}
	if cfg.IsDevelopment() {
		t.Error("Expected production mode")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:      "8080",
		Generator: GeneratorConfig{URL: "http://localhost:3000/generate-bio", Timeout: time.Second},
		Session:   SessionConfig{TTL: time.Minute, SweepInterval: time.Minute},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	tests := map[string]func(c *Config){
		"empty port":   func(c *Config) { c.Port = "" },
		"relative url": func(c *Config) { c.Generator.URL = "/generate-bio" },
		"zero timeout": func(c *Config) { c.Generator.Timeout = 0 },
		"zero ttl":     func(c *Config) { c.Session.TTL = 0 },
		"zero sweep":   func(c *Config) { c.Session.SweepInterval = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
