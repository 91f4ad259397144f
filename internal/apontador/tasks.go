package apontador

import (
	"context"
	"fmt"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/eventbus"
	"github.com/marcelomcd/apontador/internal/core/logging"
	"github.com/marcelomcd/apontador/internal/core/task"
)

// LoadTasks fetches the task list for month/year and replaces the snapshot.
// Month and year are forwarded as given; the backend validates them.
//
// When a newer load was issued while this one was in flight the response is
// discarded and ErrSuperseded is returned alongside the fetched snapshot.
func (o *Orchestrator) LoadTasks(ctx context.Context, month, year int) (task.Catalog, error) {
	o.mu.Lock()
	seq := o.issue()
	o.loadSeq = seq
	o.mu.Unlock()

	ctx = logging.WithSequence(logging.WithOperation(ctx, "load-tasks"), seq)
	o.log.Info(ctx, fmt.Sprintf("loading tasks for %02d/%d", month, year))

	list, err := o.backend.LoadTasks(ctx, month, year)
	if err != nil {
		o.mu.Lock()
		o.release(seq)
		o.mu.Unlock()

		o.log.Error(ctx, "failed to load tasks: "+backend.Message(err))
		return task.Catalog{}, err
	}

	snap := task.NewCatalog(month, year, list.Tasks, o.now())

	o.mu.Lock()
	o.release(seq)
	if seq != o.loadSeq {
		o.mu.Unlock()
		o.log.Info(ctx, fmt.Sprintf("discarded %d tasks for %02d/%d: a newer load was issued", snap.Len(), month, year))
		return snap, ErrSuperseded
	}

	prev, prevCatalog := cloneState(o.state), o.catalog
	o.catalog = snap
	if o.state.Month != month || o.state.Year != year {
		o.state.FullMonthTask = task.Key{}
	}
	o.state.Month = month
	o.state.Year = year
	if err := o.saveLocked(ctx); err != nil {
		o.state, o.catalog = prev, prevCatalog
		o.mu.Unlock()
		o.log.Error(ctx, "failed to load tasks: "+err.Error())
		return task.Catalog{}, err
	}
	st := cloneState(o.state)
	o.mu.Unlock()

	if err := o.catalogs.Put(ctx, snap); err != nil {
		o.logger.Warn().Ctx(ctx).Err(err).Msg("failed to cache task catalog")
	}

	o.log.Success(ctx, fmt.Sprintf("loaded %d tasks", snap.Len()))

	if o.bus != nil {
		o.bus.PublishTasksLoaded(eventbus.TasksLoadedPayload{Seq: seq, Month: month, Year: year, Count: snap.Len()})
	}
	o.publishPlan(st)

	return snap, nil
}
