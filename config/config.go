package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pevans/cryptonews/logger"
	"github.com/pevans/cryptonews/sources"
)

// Defaults used when neither the config file nor the environment sets a
// value.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultStaticDir       = "./static"
	DefaultRefreshInterval = 300 * time.Second
	DefaultFetchTimeout    = 30 * time.Second
	DefaultConcurrency     = 1
	DefaultParser          = "scan"
	DefaultMetadataDSN     = "metadata.db"
)

// Config is the runtime configuration of the aggregator.
type Config struct {
	Addr            string
	StaticDir       string
	RefreshInterval time.Duration
	// FetchTimeout bounds each source request. Zero means no timeout.
	FetchTimeout time.Duration
	Concurrency  int
	Parser       string
	Sources      []sources.Source
	MetadataDSN  string
	Log          logger.Config
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		StaticDir:       DefaultStaticDir,
		RefreshInterval: DefaultRefreshInterval,
		FetchTimeout:    DefaultFetchTimeout,
		Concurrency:     DefaultConcurrency,
		Parser:          DefaultParser,
		Sources:         sources.DefaultSources(),
		MetadataDSN:     DefaultMetadataDSN,
		Log:             logger.Config{Level: "info"},
	}
}

// Load builds the configuration with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file at path, or ~/.cryptonews/config.yaml if path is empty
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if file != nil {
		if err := cfg.applyFile(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overrides defaults with every value set in the file.
func (c *Config) applyFile(file *FileConfig) error {
	if file.Server.Addr != "" {
		c.Addr = file.Server.Addr
	}
	if file.Server.StaticDir != "" {
		c.StaticDir = file.Server.StaticDir
	}
	if file.Refresh.Interval != "" {
		d, err := parseDuration("refresh.interval", file.Refresh.Interval)
		if err != nil {
			return err
		}
		c.RefreshInterval = d
	}
	if file.Refresh.FetchTimeout != "" {
		d, err := parseDuration("refresh.fetch_timeout", file.Refresh.FetchTimeout)
		if err != nil {
			return err
		}
		c.FetchTimeout = d
	}
	if file.Refresh.Concurrency != 0 {
		c.Concurrency = file.Refresh.Concurrency
	}
	if file.Refresh.Parser != "" {
		c.Parser = file.Refresh.Parser
	}
	if len(file.Sources) > 0 {
		c.Sources = file.Sources
	}
	if file.Storage.MetadataDSN != "" {
		c.MetadataDSN = file.Storage.MetadataDSN
	}
	if file.Log.Level != "" {
		c.Log.Level = file.Log.Level
	}
	if file.Log.File != "" {
		c.Log.File = file.Log.File
	}
	if file.Log.MaxSize != 0 {
		c.Log.MaxSize = file.Log.MaxSize
	}
	if file.Log.MaxBackups != 0 {
		c.Log.MaxBackups = file.Log.MaxBackups
	}
	if file.Log.MaxAge != 0 {
		c.Log.MaxAge = file.Log.MaxAge
	}
	return nil
}

// applyEnv overrides the configuration with CRYPTONEWS_* variables.
func (c *Config) applyEnv() error {
	if val := os.Getenv("CRYPTONEWS_ADDR"); val != "" {
		c.Addr = val
	}
	if val := os.Getenv("CRYPTONEWS_STATIC_DIR"); val != "" {
		c.StaticDir = val
	}
	if val := os.Getenv("CRYPTONEWS_REFRESH_INTERVAL"); val != "" {
		d, err := parseDuration("CRYPTONEWS_REFRESH_INTERVAL", val)
		if err != nil {
			return err
		}
		c.RefreshInterval = d
	}
	if val := os.Getenv("CRYPTONEWS_FETCH_TIMEOUT"); val != "" {
		d, err := parseDuration("CRYPTONEWS_FETCH_TIMEOUT", val)
		if err != nil {
			return err
		}
		c.FetchTimeout = d
	}
	if val := os.Getenv("CRYPTONEWS_CONCURRENCY"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid CRYPTONEWS_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if val := os.Getenv("CRYPTONEWS_PARSER"); val != "" {
		c.Parser = val
	}
	if val := os.Getenv("CRYPTONEWS_METADATA_DSN"); val != "" {
		c.MetadataDSN = val
	}
	if val := os.Getenv("CRYPTONEWS_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("CRYPTONEWS_LOG_FILE"); val != "" {
		c.Log.File = val
	}
	return nil
}

// Validate checks the configuration for values the aggregator cannot run
// with.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if c.FetchTimeout < 0 {
		return errors.New("fetch timeout must not be negative")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.Parser != "scan" && c.Parser != "gofeed" {
		return fmt.Errorf("parser must be scan or gofeed, got %q", c.Parser)
	}
	if len(c.Sources) == 0 {
		return errors.New("at least one source is required")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("source %d: name and url are required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// parseDuration validates that a setting is a valid duration.
func parseDuration(setting, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a valid duration (e.g., 5m, 30s)", setting)
	}
	return d, nil
}
