package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"KIWOOM_APPKEY", "KIWOOM_SECRETKEY", "KIWOOM_IS_MOCK", "KIWOOM_ACCESS_TOKEN",
		"KIWOOM_TOKEN_EXPIRES_DT", "MCP_SERVER_NAME", "MCP_SERVER_VERSION", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Name != "kiwoom-stock-mcp" || cfg.Server.Version != "1.0.0" {
		t.Errorf("Unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Kiwoom.Timeout != 30*time.Second || cfg.Kiwoom.RateLimit != 5 {
		t.Errorf("Unexpected kiwoom defaults: %+v", cfg.Kiwoom)
	}
	if cfg.Kiwoom.IsMock {
		t.Error("Live mode should be the default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
kiwoom:
  appkey: file-key
  secretkey: file-secret
  is_mock: true
  timeout: 5s
  rate_limit: 2
server:
  name: my-server
log:
  level: DEBUG
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KIWOOM_APPKEY", "env-key")
	t.Setenv("KIWOOM_IS_MOCK", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kiwoom.AppKey != "env-key" {
		t.Errorf("Env should override file appkey, got %s", cfg.Kiwoom.AppKey)
	}
	if cfg.Kiwoom.SecretKey != "file-secret" {
		t.Errorf("Expected file secret, got %s", cfg.Kiwoom.SecretKey)
	}
	if cfg.Kiwoom.IsMock {
		t.Error("KIWOOM_IS_MOCK=false should override file")
	}
	if cfg.Kiwoom.Timeout != 5*time.Second || cfg.Kiwoom.RateLimit != 2 {
		t.Errorf("Unexpected client settings: %+v", cfg.Kiwoom)
	}
	if cfg.Server.Name != "my-server" || cfg.Server.Version != "1.0.0" {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Log.Level != "DEBUG" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("kiwoom: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.Kiwoom.Timeout = -time.Second }},
		{"negative rate limit", func(c *Config) { c.Kiwoom.RateLimit = -1 }},
		{"empty host", func(c *Config) { c.Kiwoom.MockHost = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "LOUD" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
