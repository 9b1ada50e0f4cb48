package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Defaults.Candidates != 20 || cfg.Defaults.Clusters != 2 {
		t.Errorf("defaults = %+v, want 20 candidates, 2 clusters", cfg.Defaults)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Error("Load with explicit missing path should fail")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voltcluster.toml")
	content := `
[defaults]
candidates = 50

[server]
addr = ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.Candidates != 50 {
		t.Errorf("candidates = %d, want 50 from file", cfg.Defaults.Candidates)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q, want :9999 from file", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Defaults.Clusters != 2 {
		t.Errorf("clusters = %d, want default 2", cfg.Defaults.Clusters)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want default file", cfg.Cache.Backend)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"carrier-pigeon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	if _, err := Load(); err == nil {
		t.Error("Load with unknown cache backend should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "cache.redis"},
		{"unknown store", func(c *Config) { c.Store.Backend = "etcd" }, "store backend"},
		{"mongo without uri", func(c *Config) { c.Store.Backend = "mongo" }, "mongo_uri"},
		{"zero candidates", func(c *Config) { c.Defaults.Candidates = -1 }, "candidates"},
		{"zero clusters", func(c *Config) { c.Defaults.Clusters = -3 }, "clusters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
