package config

import (
	"time"

	redisclient "github.com/vietddude/orchestrator/internal/infra/redis"
	"github.com/vietddude/orchestrator/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Services []ServiceConfig    `yaml:"services"`
	API      APIConfig          `yaml:"api"`
	Retry    RetryConfig        `yaml:"retry"`
	Collect  CollectConfig      `yaml:"collect"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the supervisor status server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ServiceConfig describes one supervised service in dependency order.
type ServiceConfig struct {
	Name       string        `yaml:"name"`
	Command    []string      `yaml:"command"`
	Dir        string        `yaml:"dir"`
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	HealthPath string        `yaml:"health_path"`
	MaxWait    time.Duration `yaml:"max_wait"`
}

// APIConfig holds settings for the backend analytics API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig holds the retry policy for analytics calls.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// CollectConfig holds batch collection settings.
type CollectConfig struct {
	BatchSize   int           `yaml:"batch_size"`
	Pacing      time.Duration `yaml:"pacing"`
	ExportLimit int           `yaml:"export_limit"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
