package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// the backend URL, route shapes and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("backend.url", c.Backend.URL, isHTTPURL),
		c.validateRoutes(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.Headless() {
		warnings = append(warnings, ValidationWarning{
			Category: "Automation",
			Item:     "headless",
			Message:  "browser windows will open on the backend host for every run",
		})
	}

	if c.Activity.MaxEntries == -1 {
		warnings = append(warnings, ValidationWarning{
			Category: "Activity",
			Item:     "max_entries",
			Message:  "activity log is unbounded and will grow with every command",
		})
	}

	if c.Backend.HealthTimeout > c.Backend.Timeout {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "health_timeout",
			Message:  fmt.Sprintf("health timeout %s exceeds request timeout %s", c.Backend.HealthTimeout, c.Backend.Timeout),
		})
	}

	return warnings
}

// validateFileAccess checks config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func (c *Config) validateRoutes() error {
	var errs criterio.FieldErrorsBuilder
	for name, route := range map[string]string{
		"save_credentials":  c.Backend.Routes.SaveCredentials,
		"load_credentials":  c.Backend.Routes.LoadCredentials,
		"load_tasks":        c.Backend.Routes.LoadTasks,
		"execute":           c.Backend.Routes.Execute,
		"automation_status": c.Backend.Routes.AutomationStatus,
		"health":            c.Backend.Routes.Health,
	} {
		if route == "" {
			continue
		}
		if !strings.HasPrefix(route, "/") {
			errs = errs.Append("backend.routes."+name, fmt.Errorf("route %q must start with /", route))
		}
		if strings.ContainsAny(route, "?#") {
			errs = errs.Append("backend.routes."+name, fmt.Errorf("route %q cannot carry a query or fragment", route))
		}
	}
	return errs.ToError()
}
