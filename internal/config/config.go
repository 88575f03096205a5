// Package config loads ghgantt settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/timeline"
	"gopkg.in/yaml.v3"
)

// Config holds all ghgantt settings.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	GraphQLURL  string        `yaml:"graphql_url"`
	APIVersion  string        `yaml:"api_version"`
	Account     string        `yaml:"account"`      // Keyring account for stored tokens
	Statuses    []string      `yaml:"statuses"`     // Names that mark work as started
	Concurrency int           `yaml:"concurrency"`  // 0 = one event retrieval per issue at once
	HTTPTimeout time.Duration `yaml:"http_timeout"` // Per-request timeout
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	Server      ServerConfig  `yaml:"server"`
}

// ServerConfig holds settings for `ghgantt serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:      gh.DefaultAPIURL,
		GraphQLURL:  gh.DefaultGraphQLURL,
		APIVersion:  gh.DefaultAPIVersion,
		Statuses:    append([]string(nil), timeline.DefaultStatuses...),
		Concurrency: 0,
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "info",
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns <user config dir>/ghgantt/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".ghgantt", "config.yaml")
	}
	return filepath.Join(dir, "ghgantt", "config.yaml")
}

// DefaultLogFile returns <user cache dir>/ghgantt/ghgantt.log.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ghgantt.log")
	}
	return filepath.Join(dir, "ghgantt", "ghgantt.log")
}

// Load reads the config at path. A missing file yields the defaults.
// Fields omitted from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIURL) == "" {
		errs = append(errs, errors.New("api_url must not be empty"))
	}
	if timeline.NewVocabulary(c.Statuses...).Len() == 0 {
		errs = append(errs, errors.New("statuses must contain at least one name"))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout))
	}

	return errors.Join(errs...)
}

// Vocabulary returns the status vocabulary built from Statuses.
func (c *Config) Vocabulary() timeline.Vocabulary {
	return timeline.NewVocabulary(c.Statuses...)
}
