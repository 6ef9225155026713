package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional on-disk client configuration.
type fileConfig struct {
	Page           string         `yaml:"page"`
	StreamURL      string         `yaml:"streamURL,omitempty"`
	CSRFToken      string         `yaml:"csrfToken,omitempty"`
	Keepalive      time.Duration  `yaml:"keepalive,omitempty"`
	ReconnectDelay *time.Duration `yaml:"reconnectDelay,omitempty"`
	RequestTimeout time.Duration  `yaml:"requestTimeout,omitempty"`
	MaxLogEntries  int            `yaml:"maxLogEntries,omitempty"`
	LogFile        string         `yaml:"logFile,omitempty"`
	LogLevel       string         `yaml:"logLevel,omitempty"`
	MetricsAddr    string         `yaml:"metricsAddr,omitempty"`
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./chatterbox.yaml"
	}
	return filepath.Join(dir, "chatterbox", "config.yaml")
}
