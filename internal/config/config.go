// Package config loads service settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	LogLevel        string        `yaml:"log_level"`
	OTLPLogs        bool          `yaml:"otlp_logs"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	DefaultTheme    string        `yaml:"default_theme"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		SessionTTL:      30 * time.Minute,
		SweepInterval:   time.Minute,
		DefaultTheme:    "light",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// CALC_CONFIG variable is consulted, and no file is read if both are unset.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadDotEnv(); err != nil {
		return cfg, err
	}

	if path == "" {
		path = os.Getenv("CALC_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CALC_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CALC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CALC_DEFAULT_THEME"); v != "" {
		c.DefaultTheme = v
	}
	if v := os.Getenv("CALC_OTLP_LOGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CALC_OTLP_LOGS: %w", err)
		}
		c.OTLPLogs = b
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"CALC_SESSION_TTL", &c.SessionTTL},
		{"CALC_SWEEP_INTERVAL", &c.SweepInterval},
		{"CALC_SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	switch c.DefaultTheme {
	case "light", "dark":
	default:
		return fmt.Errorf("config: default_theme must be light or dark, got %q", c.DefaultTheme)
	}
	return nil
}
