// Package period defines user declared date ranges and the planner that
// keeps them in display order.
package period

import (
	"slices"

	"github.com/marcelomcd/apontador/internal/core/task"
)

// ID identifies a period within a workspace. IDs are assigned in increasing
// order and never reused.
type ID int

// Period is one date range to be filled with a single task. Dates are kept as
// the user typed them (DD/MM/YYYY); the backend is the authority on their
// validity. Descriptions hold one line per business day.
type Period struct {
	ID        ID       `json:"id"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Task      task.Key `json:"task"`
	Morning   string   `json:"morning"`
	Afternoon string   `json:"afternoon"`
}

// Field names reported by Missing.
const (
	FieldStart = "start"
	FieldEnd   = "end"
	FieldTask  = "task"
)

// Complete reports whether the period can be submitted.
func (p Period) Complete() bool {
	return len(p.Missing()) == 0
}

// Missing lists the required fields that are still empty.
func (p Period) Missing() []string {
	var missing []string
	if p.Start == "" {
		missing = append(missing, FieldStart)
	}
	if p.End == "" {
		missing = append(missing, FieldEnd)
	}
	if p.Task.IsZero() {
		missing = append(missing, FieldTask)
	}
	return missing
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Start     *string
	End       *string
	Task      *task.Key
	Morning   *string
	Afternoon *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Start == nil && p.End == nil && p.Task == nil && p.Morning == nil && p.Afternoon == nil
}

// Apply merges the patch into the period.
func (p *Period) Apply(patch Patch) {
	if patch.Start != nil {
		p.Start = *patch.Start
	}
	if patch.End != nil {
		p.End = *patch.End
	}
	if patch.Task != nil {
		p.Task = *patch.Task
	}
	if patch.Morning != nil {
		p.Morning = *patch.Morning
	}
	if patch.Afternoon != nil {
		p.Afternoon = *patch.Afternoon
	}
}

// Planner holds the ordered list of periods. Append order is display order.
// The zero value is ready to use.
type Planner struct {
	Periods []Period `json:"periods"`
	LastID  ID       `json:"last_id"`
}

// Add appends an empty period with a fresh ID and returns it.
func (pl *Planner) Add() Period {
	pl.LastID++
	p := Period{ID: pl.LastID}
	pl.Periods = append(pl.Periods, p)
	return p
}

// Remove deletes the period with the given ID. Unknown IDs are ignored; the
// return value reports whether anything was removed.
func (pl *Planner) Remove(id ID) bool {
	i := pl.index(id)
	if i < 0 {
		return false
	}
	pl.Periods = slices.Delete(pl.Periods, i, i+1)
	return true
}

// Update merges patch into the period with the given ID. Unknown IDs are
// ignored; the return value reports whether a period was found.
func (pl *Planner) Update(id ID, patch Patch) bool {
	i := pl.index(id)
	if i < 0 {
		return false
	}
	pl.Periods[i].Apply(patch)
	return true
}

// Get returns the period with the given ID.
func (pl Planner) Get(id ID) (Period, bool) {
	i := pl.index(id)
	if i < 0 {
		return Period{}, false
	}
	return pl.Periods[i], true
}

// List returns a copy of the periods in display order.
func (pl Planner) List() []Period {
	return slices.Clone(pl.Periods)
}

// Len returns the number of periods.
func (pl Planner) Len() int {
	return len(pl.Periods)
}

func (pl Planner) index(id ID) int {
	return slices.IndexFunc(pl.Periods, func(p Period) bool { return p.ID == id })
}
