package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/config"
)

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	err := c.cfg.ValidateDeep(c.configPath)
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		result.Items = append(result.Items, item("config", StatusPass, c.configPath))
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.Items = append(result.Items, item(fe.Field, StatusFail, fe.Err.Error()))
		}
	default:
		result.Items = append(result.Items, item("config", StatusFail, err.Error()))
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label = fmt.Sprintf("%s.%s", w.Category, w.Item)
		}
		result.Items = append(result.Items, item(label, StatusWarn, w.Message))
	}

	return result
}
