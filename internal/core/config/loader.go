package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9091
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 5 * time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 20 * time.Second
	}
	if cfg.Retry.BackoffMultiple == 0 {
		cfg.Retry.BackoffMultiple = 2.0
	}

	if cfg.Collect.BatchSize == 0 {
		cfg.Collect.BatchSize = 100
	}
	if cfg.Collect.Pacing == 0 {
		cfg.Collect.Pacing = 1 * time.Second
	}
	if cfg.Collect.ExportLimit == 0 {
		cfg.Collect.ExportLimit = 1000
	}
	if cfg.Collect.CacheTTL == 0 {
		cfg.Collect.CacheTTL = 24 * time.Hour
	}

	for i := range cfg.Services {
		if cfg.Services[i].Host == "" {
			cfg.Services[i].Host = "localhost"
		}
		if cfg.Services[i].MaxWait == 0 {
			cfg.Services[i].MaxWait = 30 * time.Second
		}
	}

	return &cfg, nil
}
