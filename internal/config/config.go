package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Probe holds all configuration for the probe process.
type Probe struct {
	// LogLevel: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Gateway
	GatewayURL string `yaml:"gateway_url"`

	// Database (optional; empty host disables persistence)
	Database DatabaseConfig `yaml:"database"`

	// State engine
	HistoryCapacity   int `yaml:"history_capacity"`
	FreshnessSeconds  int `yaml:"freshness_seconds"`
	MarchGraceSeconds int `yaml:"march_grace_seconds"`

	// Exploration
	Fuzz FuzzConfig `yaml:"fuzz"`
}

// FuzzConfig tunes exploration runs.
type FuzzConfig struct {
	// Strategy selects candidate generation; empty disables fuzzing so the
	// probe runs as a passive mirror.
	Strategy        string `yaml:"strategy"`
	Parallelism     int64  `yaml:"parallelism"`
	DelayMillis     int    `yaml:"delay_ms"`
	TimeoutMillis   int    `yaml:"timeout_ms"`
	TargetAction    string `yaml:"target_action"`
	TargetParameter string `yaml:"target_parameter"`
}

// Delay returns the inter-dispatch delay.
func (f FuzzConfig) Delay() time.Duration {
	return time.Duration(f.DelayMillis) * time.Millisecond
}

// Timeout returns the per-call timeout.
func (f FuzzConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMillis) * time.Millisecond
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Enabled reports whether persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// SlogLevel maps the configured level name to a slog level; unknown names
// fall back to info.
func (p Probe) SlogLevel() slog.Level {
	switch p.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultProbe returns Probe config with documented defaults.
func DefaultProbe() Probe {
	return Probe{
		LogLevel:          "info",
		GatewayURL:        "http://127.0.0.1:8080/gateway",
		HistoryCapacity:   1000,
		FreshnessSeconds:  300,
		MarchGraceSeconds: 30,
		Fuzz: FuzzConfig{
			Strategy:        "action-discovery",
			Parallelism:     5,
			DelayMillis:     100,
			TimeoutMillis:   5000,
			TargetAction:    "castle.getCastleInfo",
			TargetParameter: "cityId",
		},
		Database: DatabaseConfig{
			Port:     5432,
			User:     "evoprobe",
			Password: "evoprobe",
			DBName:   "evoprobe",
			SSLMode:  "disable",
		},
	}
}

// LoadProbe loads probe config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadProbe(path string) (Probe, error) {
	cfg := DefaultProbe()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
