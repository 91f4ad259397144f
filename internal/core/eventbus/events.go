// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within apontador.
package eventbus

import (
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/marcelomcd/apontador/internal/core/request"
)

// Event names a topic on the bus.
type Event string

// Keep list sorted A-Z
const (
	EventActivityAppended Event = "activity.appended"
	EventPhaseChanged     Event = "automation.phase-changed"
	EventPlanChanged      Event = "plan.changed"
	EventTasksLoaded      Event = "tasks.loaded"
)

// ActivityAppendedPayload is emitted for every activity log entry.
type ActivityAppendedPayload struct {
	Entry activity.Entry
}

// PhaseChangedPayload is emitted on every executor transition.
type PhaseChangedPayload struct {
	Seq      uint64
	From, To automation.Phase
	Progress int
}

// PlanChangedPayload is emitted when the mode, month or periods change.
type PlanChangedPayload struct {
	Mode    request.Mode
	Month   int
	Year    int
	Periods int
}

// TasksLoadedPayload is emitted when a load replaced the task snapshot.
type TasksLoadedPayload struct {
	Seq   uint64
	Month int
	Year  int
	Count int
}
