// Package config loads service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Database    DatabaseConfig  `yaml:"database"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Bootstrap   BootstrapConfig `yaml:"bootstrap"`
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TracingConfig contains OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	ExporterEndpoint string  `yaml:"exporter_endpoint"`
	ExporterProtocol string  `yaml:"exporter_protocol"`
	SamplingRatio    float64 `yaml:"sampling_ratio"`
}

// MetricsConfig contains metrics exposition settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BootstrapConfig controls startup provisioning behavior.
type BootstrapConfig struct {
	SeedDemoBuilding bool   `yaml:"seed_demo_building"`
	DemoAddress      string `yaml:"demo_address"`
	DemoCapacity     uint   `yaml:"demo_capacity"`
}

// ServiceName is the canonical name used for telemetry attribution.
const ServiceName = "domu"

// Load reads configuration from DOMU_CONFIG (default config.yaml when the
// file exists) and applies DOMU_* environment overrides on top.
func Load() (Config, error) {
	cfg := defaults()

	path := strings.TrimSpace(os.Getenv("DOMU_CONFIG"))
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// running on defaults plus environment is fine
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
		},
		Database: DatabaseConfig{
			DSN:          "host=localhost port=5432 user=domu dbname=domu sslmode=disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Logging: LoggingConfig{Level: "info"},
		Tracing: TracingConfig{
			ExporterProtocol: "grpc",
			SamplingRatio:    1.0,
		},
		Metrics: MetricsConfig{Enabled: true},
		Bootstrap: BootstrapConfig{
			DemoAddress:  "12 Aleea Castanilor",
			DemoCapacity: 8,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOMU_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("DOMU_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DOMU_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DOMU_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DOMU_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = parseBool(v, cfg.Tracing.Enabled)
	}
	if v := os.Getenv("DOMU_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.ExporterEndpoint = v
	}
	if v := os.Getenv("DOMU_SEED_DEMO_BUILDING"); v != "" {
		cfg.Bootstrap.SeedDemoBuilding = parseBool(v, cfg.Bootstrap.SeedDemoBuilding)
	}
}

func parseBool(raw string, fallback bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
