package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Kiwoom KiwoomConfig `yaml:"kiwoom"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// KiwoomConfig holds broker credentials and client settings
type KiwoomConfig struct {
	AppKey         string        `yaml:"appkey"`
	SecretKey      string        `yaml:"secretkey"`
	IsMock         bool          `yaml:"is_mock"`
	AccessToken    string        `yaml:"access_token"`
	TokenExpiresAt string        `yaml:"token_expires_dt"` // YYYYMMDDHHMMSS
	RealHost       string        `yaml:"real_host"`
	MockHost       string        `yaml:"mock_host"`
	Timeout        time.Duration `yaml:"timeout"`    // 0 disables the HTTP timeout
	RateLimit      int           `yaml:"rate_limit"` // requests per second, 0 disables
}

// ServerConfig holds MCP server identity
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Kiwoom: KiwoomConfig{
			RealHost:  "https://api.kiwoom.com",
			MockHost:  "https://mockapi.kiwoom.com",
			Timeout:   30 * time.Second,
			RateLimit: 5,
		},
		Server: ServerConfig{
			Name:    "kiwoom-stock-mcp",
			Version: "1.0.0",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides values with environment variables if set
func (c *Config) applyEnv() {
	if v := os.Getenv("KIWOOM_APPKEY"); v != "" {
		c.Kiwoom.AppKey = v
	}
	if v := os.Getenv("KIWOOM_SECRETKEY"); v != "" {
		c.Kiwoom.SecretKey = v
	}
	if v := os.Getenv("KIWOOM_IS_MOCK"); v != "" {
		c.Kiwoom.IsMock = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("KIWOOM_ACCESS_TOKEN"); v != "" {
		c.Kiwoom.AccessToken = v
	}
	if v := os.Getenv("KIWOOM_TOKEN_EXPIRES_DT"); v != "" {
		c.Kiwoom.TokenExpiresAt = v
	}
	if v := os.Getenv("MCP_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("MCP_SERVER_VERSION"); v != "" {
		c.Server.Version = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Validate checks if the configuration is valid.
// Credentials are optional: they can be supplied later through set_credentials.
func (c *Config) Validate() error {
	if c.Kiwoom.RealHost == "" || c.Kiwoom.MockHost == "" {
		return fmt.Errorf("kiwoom real_host and mock_host must be set")
	}
	if c.Kiwoom.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Kiwoom.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (expected text or json)", c.Log.Format)
	}
	return nil
}
