// Package config handles configuration loading and validation for apontador.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcelomcd/apontador/internal/core/styles"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Automation AutomationConfig `yaml:"automation"`
	Activity   ActivityConfig   `yaml:"activity"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Theme      string           `yaml:"theme"`
	DataDir    string           `yaml:"-"` // set by caller, not from config file
}

// BackendConfig locates the automation service.
type BackendConfig struct {
	URL           string        `yaml:"url"`
	Timeout       time.Duration `yaml:"timeout"`
	HealthTimeout time.Duration `yaml:"health_timeout"`
	Routes        Routes        `yaml:"routes"`
}

// Routes overrides the path of individual backend operations. Empty values
// keep the default route.
type Routes struct {
	SaveCredentials  string `yaml:"save_credentials"`
	LoadCredentials  string `yaml:"load_credentials"`
	LoadTasks        string `yaml:"load_tasks"`
	Execute          string `yaml:"execute"`
	AutomationStatus string `yaml:"automation_status"`
	Health           string `yaml:"health"`
}

// AutomationConfig holds defaults for submitted requests.
type AutomationConfig struct {
	// Headless asks the backend to run the browser without a window.
	Headless *bool `yaml:"headless"`
}

// ActivityConfig controls the activity log retention.
type ActivityConfig struct {
	// MaxEntries caps the log; the oldest entries are evicted first.
	// -1 keeps every entry.
	MaxEntries int `yaml:"max_entries"`
}

// CatalogConfig controls the task catalog cache.
type CatalogConfig struct {
	// StaleAfter is the age after which doctor suggests reloading tasks.
	StaleAfter time.Duration `yaml:"stale_after"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	headless := true
	return Config{
		Backend: BackendConfig{
			URL:           "http://localhost:8000",
			Timeout:       30 * time.Second,
			HealthTimeout: 5 * time.Second,
		},
		Automation: AutomationConfig{Headless: &headless},
		Activity:   ActivityConfig{MaxEntries: 500},
		Catalog:    CatalogConfig{StaleAfter: 24 * time.Hour},
		Theme:      styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Backend.URL) == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = defaults.Backend.Timeout
	}
	if c.Backend.HealthTimeout == 0 {
		c.Backend.HealthTimeout = defaults.Backend.HealthTimeout
	}
	if c.Automation.Headless == nil {
		c.Automation.Headless = defaults.Automation.Headless
	}
	if c.Activity.MaxEntries == 0 {
		c.Activity.MaxEntries = defaults.Activity.MaxEntries
	}
	if c.Catalog.StaleAfter == 0 {
		c.Catalog.StaleAfter = defaults.Catalog.StaleAfter
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url cannot be empty")
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	if c.Backend.HealthTimeout < 0 {
		return fmt.Errorf("backend.health_timeout cannot be negative")
	}

	if c.Activity.MaxEntries < -1 {
		return fmt.Errorf("activity.max_entries must be -1 (unbounded) or positive")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	return nil
}

// Headless reports the configured headless default.
func (c *Config) Headless() bool {
	return c.Automation.Headless == nil || *c.Automation.Headless
}

// ActivityLimit returns the retention cap for the activity log, 0 meaning
// unbounded.
func (c *Config) ActivityLimit() int {
	if c.Activity.MaxEntries < 0 {
		return 0
	}
	return c.Activity.MaxEntries
}

// SessionFile returns the path of the persisted session state.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// ActivityFile returns the path of the persisted activity log.
func (c *Config) ActivityFile() string {
	return filepath.Join(c.DataDir, "activity.json")
}

// CacheDir returns the root of the key-value cache holding task catalogs.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}
