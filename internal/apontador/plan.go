package apontador

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/logging"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/task"
)

// ErrNoCatalog is returned when a task reference is resolved before any
// tasks were loaded for the selected month.
var ErrNoCatalog = errors.New("no tasks loaded for the selected month")

// SetMode switches between full-month and explicit periods.
func (o *Orchestrator) SetMode(ctx context.Context, mode request.Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("set mode: unknown mode %q", mode)
	}
	return o.edit(ctx, "set-mode", func() error {
		o.state.Mode = mode
		return nil
	})
}

// SetMonth selects the month worked on. The task snapshot switches to the
// one cached for that month, if any.
func (o *Orchestrator) SetMonth(ctx context.Context, month, year int) error {
	var errs criterio.FieldErrorsBuilder
	if month < 1 || month > 12 {
		errs = errs.Append("month", fmt.Errorf("%d is not between 1 and 12", month))
	}
	if year < 1000 || year > 9999 {
		errs = errs.Append("year", fmt.Errorf("%d is not a 4-digit year", year))
	}
	if err := errs.ToError(); err != nil {
		return err
	}

	snap, err := o.cachedCatalog(ctx, month, year)
	if err != nil {
		return fmt.Errorf("set month: %w", err)
	}

	return o.edit(ctx, "set-month", func() error {
		if o.state.Month != month || o.state.Year != year {
			o.state.FullMonthTask = task.Key{}
		}
		o.state.Month = month
		o.state.Year = year
		o.catalog = snap
		return nil
	})
}

// SetFullMonthTask chooses the task submitted in full-month mode. An empty
// ref clears the choice.
func (o *Orchestrator) SetFullMonthTask(ctx context.Context, ref string) (task.Task, error) {
	var chosen task.Task
	err := o.edit(ctx, "set-full-month-task", func() error {
		if ref == "" {
			o.state.FullMonthTask = task.Key{}
			return nil
		}
		t, err := o.resolveLocked(ref)
		if err != nil {
			return err
		}
		chosen = t
		o.state.FullMonthTask = t.Key()
		return nil
	})
	return chosen, err
}

// ResolveTask resolves a row number or key against the current snapshot.
// Only tasks with a positive balance resolve.
func (o *Orchestrator) ResolveTask(ref string) (task.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolveLocked(ref)
}

func (o *Orchestrator) resolveLocked(ref string) (task.Task, error) {
	if o.catalog.Empty() {
		return task.Task{}, fmt.Errorf("%w (%02d/%d)", ErrNoCatalog, o.state.Month, o.state.Year)
	}
	return o.catalog.ResolveSelectable(ref)
}

// AddPeriod appends a period and applies patch to it.
func (o *Orchestrator) AddPeriod(ctx context.Context, patch period.Patch) (period.Period, error) {
	var added period.Period
	err := o.edit(ctx, "add-period", func() error {
		p := o.state.Planner.Add()
		o.state.Planner.Update(p.ID, patch)
		added, _ = o.state.Planner.Get(p.ID)
		return nil
	})
	return added, err
}

// UpdatePeriod merges patch into the period with the given id. Updating an
// unknown id changes nothing and reports false.
func (o *Orchestrator) UpdatePeriod(ctx context.Context, id period.ID, patch period.Patch) (period.Period, bool, error) {
	var (
		updated period.Period
		found   bool
	)
	err := o.edit(ctx, "update-period", func() error {
		if found = o.state.Planner.Update(id, patch); found {
			updated, _ = o.state.Planner.Get(id)
		}
		return nil
	})
	return updated, found, err
}

// RemovePeriod deletes the period with the given id. Removing an unknown id
// changes nothing and reports false.
func (o *Orchestrator) RemovePeriod(ctx context.Context, id period.ID) (bool, error) {
	var removed bool
	err := o.edit(ctx, "remove-period", func() error {
		removed = o.state.Planner.Remove(id)
		return nil
	})
	return removed, err
}

// ImportPlan appends the periods described by a previously built request.
// Tasks are recovered by position in the current snapshot.
func (o *Orchestrator) ImportPlan(ctx context.Context, req request.Request) ([]period.Period, error) {
	ctx = logging.WithOperation(ctx, "import-plan")

	var imported []period.Period
	err := o.edit(ctx, "import-plan", func() error {
		for _, p := range request.Periods(req, o.catalog) {
			added := o.state.Planner.Add()
			o.state.Planner.Update(added.ID, period.Patch{
				Start:     &p.Start,
				End:       &p.End,
				Task:      &p.Task,
				Morning:   &p.Morning,
				Afternoon: &p.Afternoon,
			})
			got, _ := o.state.Planner.Get(added.ID)
			imported = append(imported, got)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Info(ctx, fmt.Sprintf("imported %d periods", len(imported)))
	return imported, nil
}

// Input assembles the builder input from the current plan and snapshot.
func (o *Orchestrator) Input(headless bool) request.Input {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneState(o.state).Input(o.catalog, headless)
}

// BuildRequest dry-runs the request builder. Nothing is logged or sent.
func (o *Orchestrator) BuildRequest(headless bool) (request.Request, error) {
	return request.Build(o.Input(headless))
}

// edit applies fn to the plan under the lock and persists it. When fn or
// the save fails the plan is restored.
func (o *Orchestrator) edit(ctx context.Context, op string, fn func() error) error {
	o.mu.Lock()
	prevState, prevCatalog := cloneState(o.state), o.catalog

	if err := fn(); err != nil {
		o.state, o.catalog = prevState, prevCatalog
		o.mu.Unlock()
		return err
	}
	if err := o.saveLocked(ctx); err != nil {
		o.state, o.catalog = prevState, prevCatalog
		o.mu.Unlock()
		return err
	}
	st := cloneState(o.state)
	o.mu.Unlock()

	o.logger.Debug().Ctx(ctx).Str("edit", op).Int("periods", st.Planner.Len()).Msg("plan updated")
	o.publishPlan(st)
	return nil
}
