package session

import (
	"testing"
	"time"

	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToFullMonthOfNow(t *testing.T) {
	now := time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)
	s := New(now)

	assert.Equal(t, request.ModeFullMonth, s.Mode)
	assert.Equal(t, 2, s.Month)
	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, now, s.UpdatedAt)
	assert.Zero(t, s.Planner.Len())
}

func TestState_Normalize(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	s := State{Mode: "bogus"}
	s.Normalize(now)
	assert.Equal(t, request.ModeFullMonth, s.Mode)
	assert.Equal(t, 7, s.Month)
	assert.Equal(t, 2025, s.Year)

	kept := State{Mode: request.ModePeriods, Month: 3, Year: 2023}
	kept.Normalize(now)
	assert.Equal(t, State{Mode: request.ModePeriods, Month: 3, Year: 2023}, kept)
}

func TestState_Input(t *testing.T) {
	key := task.Key{Client: "Acme", Project: "Portal", Task: "Dev"}
	s := New(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	s.Mode = request.ModePeriods
	s.FullMonthTask = key
	p := s.Planner.Add()

	c := task.NewCatalog(2, 2024, []task.Task{{Client: "Acme", Project: "Portal", Name: "Dev", Balance: "1,0"}}, time.Now())
	in := s.Input(c, true)

	assert.Equal(t, request.ModePeriods, in.Mode)
	assert.Equal(t, 2, in.Month)
	assert.Equal(t, 2024, in.Year)
	assert.True(t, in.Headless)
	assert.Equal(t, key, in.FullMonthTask)
	assert.Equal(t, 1, in.Catalog.Len())
	require.Len(t, in.Periods, 1)
	assert.Equal(t, p.ID, in.Periods[0].ID)

	in.Periods[0].Start = "changed"
	got, _ := s.Planner.Get(p.ID)
	assert.Empty(t, got.Start, "input must not alias the planner")
}
