package apontador

import (
	"context"

	"github.com/marcelomcd/apontador/internal/core/config"
	"github.com/marcelomcd/apontador/internal/core/doctor"
)

// DoctorService runs health checks on the workspace and the backend.
type DoctorService struct {
	orchestrator *Orchestrator
	config       *config.Config
	baseURL      string
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(o *Orchestrator, cfg *config.Config, baseURL string) *DoctorService {
	return &DoctorService{
		orchestrator: o,
		config:       cfg,
		baseURL:      baseURL,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	st := d.orchestrator.State()
	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewWorkspaceCheck(d.config.DataDir, []string{d.config.SessionFile(), d.config.ActivityFile()}, autofix),
		doctor.NewBackendCheck(d.orchestrator.backend, d.baseURL),
		doctor.NewCredentialsCheck(d.orchestrator.backend),
		doctor.NewCatalogCheck(d.orchestrator.catalogs, st.Month, st.Year, d.config.Catalog.StaleAfter),
		doctor.NewPlanCheck(d.orchestrator.Input(d.config.Headless())),
	}
	return doctor.RunAll(ctx, checks)
}
