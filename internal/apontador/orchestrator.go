// Package apontador is the orchestration layer: it owns the workspace state
// (plan, task snapshot, executor state) and mediates every call to the
// automation backend.
package apontador

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/marcelomcd/apontador/internal/core/eventbus"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/session"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/store/catalog"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by a call whose response arrived after a newer
// call of the same kind was issued. The response was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Backend is the automation service.
type Backend interface {
	SaveCredentials(ctx context.Context, creds backend.Credentials) (backend.SaveResult, error)
	LoadCredentials(ctx context.Context) (backend.CredentialStatus, error)
	LoadTasks(ctx context.Context, month, year int) (backend.TaskList, error)
	Execute(ctx context.Context, req request.Request) (backend.ExecutionResult, error)
	Status(ctx context.Context) (backend.AutomationStatus, error)
	Health(ctx context.Context) (backend.Health, error)
}

// CatalogCache keeps task snapshots between invocations.
type CatalogCache interface {
	Get(ctx context.Context, month, year int) (task.Catalog, error)
	Put(ctx context.Context, snap task.Catalog) error
}

// Orchestrator is the single writer of the workspace state. It is safe for
// concurrent use.
//
// Every LoadTasks and Execute call draws a sequence number when issued. The
// most recently issued call owns the loading flag and progress; the most
// recently issued load owns the task snapshot and the most recently
// submitted attempt owns the phase. Responses to older calls are
// still logged but leave the shared state alone.
type Orchestrator struct {
	backend  Backend
	sessions session.Store
	catalogs CatalogCache
	log      *activity.Log
	bus      *eventbus.EventBus
	logger   zerolog.Logger
	now      func() time.Time

	mu           sync.Mutex
	state        session.State
	catalog      task.Catalog
	exec         automation.State
	seq          uint64
	loadSeq      uint64
	execSeq      uint64
	loadingOwner uint64
}

// NewOrchestrator creates an Orchestrator. bus may be nil.
func NewOrchestrator(
	be Backend,
	sessions session.Store,
	catalogs CatalogCache,
	log *activity.Log,
	bus *eventbus.EventBus,
	logger zerolog.Logger,
) *Orchestrator {
	now := time.Now
	return &Orchestrator{
		backend:  be,
		sessions: sessions,
		catalogs: catalogs,
		log:      log,
		bus:      bus,
		logger:   logger,
		now:      now,
		state:    session.New(now()),
		exec:     automation.State{Phase: automation.PhaseIdle},
	}
}

// Open restores the persisted plan and the cached task snapshot for its
// month. A workspace that was never saved starts from defaults.
func (o *Orchestrator) Open(ctx context.Context) error {
	st, err := o.sessions.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNotFound):
		st = session.New(o.now())
	case err != nil:
		return fmt.Errorf("open workspace: %w", err)
	}
	st.Normalize(o.now())

	snap, err := o.cachedCatalog(ctx, st.Month, st.Year)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	o.mu.Lock()
	o.state = st
	o.catalog = snap
	o.mu.Unlock()

	o.logger.Debug().
		Str("mode", string(st.Mode)).
		Int("month", st.Month).
		Int("year", st.Year).
		Int("periods", st.Planner.Len()).
		Int("tasks", snap.Len()).
		Msg("workspace opened")
	return nil
}

// State returns a copy of the plan.
func (o *Orchestrator) State() session.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneState(o.state)
}

// Catalog returns the current task snapshot.
func (o *Orchestrator) Catalog() task.Catalog {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.catalog
}

// ExecState returns the executor state of this process.
func (o *Orchestrator) ExecState() automation.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.exec
}

// Activity returns the activity log.
func (o *Orchestrator) Activity() *activity.Log {
	return o.log
}

// cachedCatalog returns the cached snapshot for month/year, or an empty one.
func (o *Orchestrator) cachedCatalog(ctx context.Context, month, year int) (task.Catalog, error) {
	snap, err := o.catalogs.Get(ctx, month, year)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return task.Catalog{Month: month, Year: year}, nil
	case err != nil:
		return task.Catalog{}, err
	}
	return snap, nil
}

// issue draws the next sequence number and hands it the loading flag.
// Callers hold o.mu.
func (o *Orchestrator) issue() uint64 {
	o.seq++
	o.loadingOwner = o.seq
	o.exec.Loading = true
	o.exec.Seq = o.seq
	return o.seq
}

// release clears the loading flag if seq still owns it. Callers hold o.mu.
func (o *Orchestrator) release(seq uint64) bool {
	if o.loadingOwner != seq {
		return false
	}
	o.exec.Loading = false
	return true
}

// saveLocked persists the plan. Callers hold o.mu.
func (o *Orchestrator) saveLocked(ctx context.Context) error {
	o.state.Touch(o.now())
	if err := o.sessions.Save(ctx, o.state); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

func (o *Orchestrator) publishPlan(st session.State) {
	if o.bus == nil {
		return
	}
	o.bus.PublishPlanChanged(eventbus.PlanChangedPayload{
		Mode:    st.Mode,
		Month:   st.Month,
		Year:    st.Year,
		Periods: st.Planner.Len(),
	})
}

func (o *Orchestrator) publishPhase(seq uint64, from, to automation.Phase, progress int) {
	if o.bus == nil || from == to {
		return
	}
	o.bus.PublishPhaseChanged(eventbus.PhaseChangedPayload{Seq: seq, From: from, To: to, Progress: progress})
}

func cloneState(st session.State) session.State {
	st.Planner.Periods = slices.Clone(st.Planner.Periods)
	return st
}
