package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/cryptonews/sources"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of the YAML config file. Durations are
// kept as strings here and parsed when merged into a Config.
type FileConfig struct {
	Server struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`
	Refresh struct {
		Interval     string `yaml:"interval"`
		FetchTimeout string `yaml:"fetch_timeout"`
		Concurrency  int    `yaml:"concurrency"`
		Parser       string `yaml:"parser"`
	} `yaml:"refresh"`
	Sources []sources.Source `yaml:"sources"`
	Storage struct {
		MetadataDSN string `yaml:"metadata_dsn"`
	} `yaml:"storage"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
	} `yaml:"log"`
}

// DefaultConfigPath returns ~/.cryptonews/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cryptonews", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
