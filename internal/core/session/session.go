// Package session defines the persisted workspace state shared by every
// command: the selected mode, the month being worked on and the planned
// periods.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/task"
)

// ErrNotFound is returned by a Store that has no saved state yet.
var ErrNotFound = errors.New("session state not found")

// Store persists the session state.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// State is the orchestration context carried between invocations.
//
// Loading and progress are deliberately absent: they describe an attempt in
// flight and belong to the process running it.
type State struct {
	Mode  request.Mode `json:"mode"`
	Month int          `json:"month"`
	Year  int          `json:"year"`

	// FullMonthTask is the task submitted in full-month mode, if chosen.
	FullMonthTask task.Key `json:"full_month_task"`

	Planner   period.Planner `json:"planner"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New returns the default state: full-month mode for the month of now.
func New(now time.Time) State {
	return State{
		Mode:      request.ModeFullMonth,
		Month:     int(now.Month()),
		Year:      now.Year(),
		UpdatedAt: now,
	}
}

// Normalize fills fields left empty by older or hand edited state files.
func (s *State) Normalize(now time.Time) {
	if !s.Mode.IsValid() {
		s.Mode = request.ModeFullMonth
	}
	if s.Month == 0 {
		s.Month = int(now.Month())
	}
	if s.Year == 0 {
		s.Year = now.Year()
	}
}

// Touch records a modification.
func (s *State) Touch(now time.Time) {
	s.UpdatedAt = now
}

// Input assembles the builder input from the state and a catalog snapshot.
func (s State) Input(c task.Catalog, headless bool) request.Input {
	return request.Input{
		Mode:          s.Mode,
		Month:         s.Month,
		Year:          s.Year,
		Periods:       s.Planner.List(),
		Catalog:       c,
		Headless:      headless,
		FullMonthTask: s.FullMonthTask,
	}
}
