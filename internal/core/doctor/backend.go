package doctor

import (
	"context"
	"fmt"

	"github.com/marcelomcd/apontador/internal/backend"
)

// Prober is the part of the backend client used for liveness checks.
type Prober interface {
	Health(ctx context.Context) (backend.Health, error)
	Status(ctx context.Context) (backend.AutomationStatus, error)
}

// BackendCheck verifies that the automation service answers.
type BackendCheck struct {
	prober  Prober
	baseURL string
}

// NewBackendCheck creates a new backend check.
func NewBackendCheck(prober Prober, baseURL string) *BackendCheck {
	return &BackendCheck{prober: prober, baseURL: baseURL}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	health, err := c.prober.Health(ctx)
	if err != nil {
		result.Items = append(result.Items, item("health", StatusFail, backend.Message(err)))
		return result
	}

	detail := c.baseURL
	if health.Version != "" {
		detail = fmt.Sprintf("%s (version %s)", c.baseURL, health.Version)
	}
	result.Items = append(result.Items, item("health", StatusPass, detail))

	status, err := c.prober.Status(ctx)
	switch {
	case err != nil:
		result.Items = append(result.Items, item("automation", StatusWarn, backend.Message(err)))
	case status.BrowserOpen:
		result.Items = append(result.Items, item("automation", StatusPass, "browser open"))
	case status.PlaywrightInitialized:
		result.Items = append(result.Items, item("automation", StatusPass, "initialized, browser closed"))
	default:
		result.Items = append(result.Items, item("automation", StatusPass, "idle, starts on first request"))
	}

	return result
}
