// Package config provides configuration loading and validation for ProjectHub.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Standard config file location.
const defaultConfigPath = "~/.config/projecthub/config.json"

// Environment variables that override file values.
const (
	EnvAPIURL   = "PROJECTHUB_API_URL"
	EnvLogLevel = "PROJECTHUB_LOG_LEVEL"
	EnvLogFile  = "PROJECTHUB_LOG_FILE"
)

// Config holds all ProjectHub configuration settings.
type Config struct {
	APIURL                string       `json:"api_url"`
	SessionPath           string       `json:"session_path"` // sqlite file holding the stored credential
	LogFile               string       `json:"log_file"`
	LogLevel              string       `json:"log_level"`
	RequestTimeoutSeconds int          `json:"request_timeout_seconds"`
	RequestsPerSecond     float64      `json:"requests_per_second"`
	Server                ServerConfig `json:"server"`

	// expandedPaths tracks whether ExpandPaths has been called.
	expandedPaths bool
}

// ServerConfig holds settings for the local development API server.
type ServerConfig struct {
	Addr      string `json:"addr"`
	JWTSecret string `json:"jwt_secret"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIURL:                "http://localhost:8080",
		SessionPath:           "~/.local/share/projecthub/session.db",
		LogFile:               "~/.local/share/projecthub/projecthub.log",
		LogLevel:              "info",
		RequestTimeoutSeconds: 30,
		RequestsPerSecond:     10,
		Server: ServerConfig{
			Addr:      ":8080",
			JWTSecret: "dev-secret-change-in-production",
		},
	}
}

// Load reads config from the standard location (~/.config/projecthub/config.json),
// falling back to defaults if the file doesn't exist. A .env file in the
// working directory, if present, is loaded into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// If the file doesn't exist, returns default config with env overrides.
// If the file exists but is invalid, returns an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var fileCfg fileConfig
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		mergeConfig(cfg, &fileCfg)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fileConfig is used for parsing JSON with pointer fields to detect what was set.
type fileConfig struct {
	APIURL                *string           `json:"api_url"`
	SessionPath           *string           `json:"session_path"`
	LogFile               *string           `json:"log_file"`
	LogLevel              *string           `json:"log_level"`
	RequestTimeoutSeconds *int              `json:"request_timeout_seconds"`
	RequestsPerSecond     *float64          `json:"requests_per_second"`
	Server                *fileServerConfig `json:"server"`
}

type fileServerConfig struct {
	Addr      *string `json:"addr"`
	JWTSecret *string `json:"jwt_secret"`
}

// mergeConfig merges file config values into the default config.
// Only non-nil values from the file config are applied.
func mergeConfig(cfg *Config, fileCfg *fileConfig) {
	if fileCfg.APIURL != nil {
		cfg.APIURL = *fileCfg.APIURL
	}
	if fileCfg.SessionPath != nil {
		cfg.SessionPath = *fileCfg.SessionPath
	}
	if fileCfg.LogFile != nil {
		cfg.LogFile = *fileCfg.LogFile
	}
	if fileCfg.LogLevel != nil {
		cfg.LogLevel = *fileCfg.LogLevel
	}
	if fileCfg.RequestTimeoutSeconds != nil {
		cfg.RequestTimeoutSeconds = *fileCfg.RequestTimeoutSeconds
	}
	if fileCfg.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fileCfg.RequestsPerSecond
	}

	if fileCfg.Server != nil {
		if fileCfg.Server.Addr != nil {
			cfg.Server.Addr = *fileCfg.Server.Addr
		}
		if fileCfg.Server.JWTSecret != nil {
			cfg.Server.JWTSecret = *fileCfg.Server.JWTSecret
		}
	}
}

// applyEnv overrides config values from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url must be an absolute URL: %q", c.APIURL))
	}

	if c.SessionPath == "" {
		errs = append(errs, errors.New("session_path must be non-empty"))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level is invalid: %q", c.LogLevel))
	}

	if c.RequestTimeoutSeconds < 1 {
		errs = append(errs, errors.New("request_timeout_seconds must be >= 1"))
	}

	if c.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests_per_second must be > 0"))
	}

	if c.Server.JWTSecret == "" {
		errs = append(errs, errors.New("server.jwt_secret must be non-empty"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ExpandPaths expands ~ to home directory in all path fields.
func (c *Config) ExpandPaths() error {
	if c.expandedPaths {
		return nil
	}

	var err error

	c.SessionPath, err = expandPath(c.SessionPath)
	if err != nil {
		return fmt.Errorf("failed to expand session_path: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.expandedPaths = true
	return nil
}

// RequestTimeout returns the per-request timeout for the API client.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
