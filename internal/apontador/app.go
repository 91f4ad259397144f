package apontador

import (
	"github.com/marcelomcd/apontador/internal/core/config"
	"github.com/marcelomcd/apontador/internal/core/eventbus"
	"github.com/marcelomcd/apontador/internal/store/jsonfile"
)

// App is the central entry point for all apontador operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Orchestrator *Orchestrator
	Doctor       *DoctorService

	Config   *config.Config
	Bus      *eventbus.EventBus
	Activity *jsonfile.ActivityStore
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	o *Orchestrator,
	cfg *config.Config,
	bus *eventbus.EventBus,
	activityStore *jsonfile.ActivityStore,
	baseURL string,
) *App {
	return &App{
		Orchestrator: o,
		Doctor:       NewDoctorService(o, cfg, baseURL),
		Config:       cfg,
		Bus:          bus,
		Activity:     activityStore,
	}
}
