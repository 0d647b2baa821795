package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type EmbeddingsConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model,omitempty"`
	Dimension int    `yaml:"dimension,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

type StorageConfig struct {
	Compress bool `yaml:"compress"`
}

type JournalConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Storage    StorageConfig    `yaml:"storage"`
	Journal    JournalConfig    `yaml:"journal"`
	Logging    LoggingConfig    `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Backend: BackendAuto,
		},
		Journal: JournalConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads the scope's config.yaml. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Embeddings.Backend == "" {
		cfg.Embeddings.Backend = BackendAuto
	}

	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
