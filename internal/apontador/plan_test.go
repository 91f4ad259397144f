package apontador

import (
	"context"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMode(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.o.SetMode(context.Background(), request.ModePeriods))
	assert.Equal(t, request.ModePeriods, h.o.State().Mode)

	assert.Error(t, h.o.SetMode(context.Background(), "weekly"))
	assert.Equal(t, request.ModePeriods, h.o.State().Mode)

	h.open(t)
	assert.Equal(t, request.ModePeriods, h.o.State().Mode)
}

func TestSetMonth_Validation(t *testing.T) {
	h := newHarness(t)

	err := h.o.SetMonth(context.Background(), 13, 24)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "month", fieldErrs[0].Field)
	assert.Equal(t, "year", fieldErrs[1].Field)
	assert.Equal(t, 2, h.o.State().Month)
}

func TestSetMonth_SwitchesCatalog(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)
	_, err := h.o.SetFullMonthTask(context.Background(), "1")
	require.NoError(t, err)

	require.NoError(t, h.o.SetMonth(context.Background(), 3, 2024))
	assert.True(t, h.o.Catalog().Empty())
	assert.True(t, h.o.State().FullMonthTask.IsZero(), "task choice is per month")

	require.NoError(t, h.o.SetMonth(context.Background(), 2, 2024))
	assert.Equal(t, 3, h.o.Catalog().Len(), "cached snapshot is restored")
}

func TestSetFullMonthTask(t *testing.T) {
	h := newHarness(t)

	_, err := h.o.SetFullMonthTask(context.Background(), "1")
	require.ErrorIs(t, err, ErrNoCatalog)

	h.loaded(t)

	_, err = h.o.SetFullMonthTask(context.Background(), keyQA.String())
	require.ErrorIs(t, err, task.ErrNotSelectable)
	assert.True(t, h.o.State().FullMonthTask.IsZero())

	got, err := h.o.SetFullMonthTask(context.Background(), "Globex / ERP / Support")
	require.NoError(t, err)
	assert.Equal(t, keySupport, got.Key())
	assert.Equal(t, keySupport, h.o.State().FullMonthTask)

	_, err = h.o.SetFullMonthTask(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, h.o.State().FullMonthTask.IsZero())
}

func TestPeriodEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.o.AddPeriod(ctx, period.Patch{Start: ptr("01/02/2024"), End: ptr("09/02/2024")})
	require.NoError(t, err)
	second, err := h.o.AddPeriod(ctx, period.Patch{})
	require.NoError(t, err)

	assert.Equal(t, period.ID(1), first.ID)
	assert.Equal(t, "01/02/2024", first.Start)
	assert.Equal(t, period.ID(2), second.ID)

	updated, found, err := h.o.UpdatePeriod(ctx, first.ID, period.Patch{Task: ptr(keyDev), Morning: ptr("line")})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "01/02/2024", updated.Start)
	assert.Equal(t, keyDev, updated.Task)
	assert.Equal(t, "line", updated.Morning)

	before := h.o.State().Planner.List()
	_, found, err = h.o.UpdatePeriod(ctx, 99, period.Patch{Start: ptr("x")})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, h.o.State().Planner.List())

	removed, err := h.o.RemovePeriod(ctx, 99)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, h.o.State().Planner.Len())

	removed, err = h.o.RemovePeriod(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	third, err := h.o.AddPeriod(ctx, period.Patch{})
	require.NoError(t, err)
	assert.Equal(t, period.ID(3), third.ID, "ids are not reused")

	h.open(t)
	st := h.o.State()
	require.Equal(t, 2, st.Planner.Len())
	assert.Equal(t, []period.ID{1, 3}, []period.ID{st.Planner.Periods[0].ID, st.Planner.Periods[1].ID})
	assert.Equal(t, keyDev, st.Planner.Periods[0].Task)
}

func TestState_IsACopy(t *testing.T) {
	h := newHarness(t)
	_, err := h.o.AddPeriod(context.Background(), period.Patch{Start: ptr("01/02/2024")})
	require.NoError(t, err)

	st := h.o.State()
	st.Planner.Periods[0].Start = "changed"

	assert.Equal(t, "01/02/2024", h.o.State().Planner.Periods[0].Start)
}

func TestResolveTask(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)

	got, err := h.o.ResolveTask("#1")
	require.NoError(t, err)
	assert.Equal(t, keyDev, got.Key())

	_, err = h.o.ResolveTask("2")
	require.ErrorIs(t, err, task.ErrNotSelectable)

	_, err = h.o.ResolveTask("9")
	require.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestImportPlan_RoundTrip(t *testing.T) {
	h := newHarness(t)
	h.loaded(t)
	ctx := context.Background()
	require.NoError(t, h.o.SetMode(ctx, request.ModePeriods))

	_, err := h.o.AddPeriod(ctx, period.Patch{Start: ptr("01/02/2024"), End: ptr("09/02/2024"), Task: ptr(keyDev), Morning: ptr("a\nb")})
	require.NoError(t, err)
	_, err = h.o.AddPeriod(ctx, period.Patch{Start: ptr("12/02/2024"), End: ptr("16/02/2024"), Task: ptr(keySupport), Afternoon: ptr("c")})
	require.NoError(t, err)

	req, err := h.o.BuildRequest(true)
	require.NoError(t, err)

	imported, err := h.o.ImportPlan(ctx, req)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	original := h.o.State().Planner.List()[:2]
	for i, p := range imported {
		assert.Equal(t, original[i].Start, p.Start)
		assert.Equal(t, original[i].End, p.End)
		assert.Equal(t, original[i].Task, p.Task)
		assert.Equal(t, original[i].Morning, p.Morning)
		assert.Equal(t, original[i].Afternoon, p.Afternoon)
		assert.NotEqual(t, original[i].ID, p.ID)
	}
	assert.Equal(t, 4, h.o.State().Planner.Len())
	assert.Contains(t, messages(h.log.Entries()), "imported 2 periods")
}

func TestBuildRequest_DoesNotLog(t *testing.T) {
	h := newHarness(t)
	before := h.log.Len()

	_, err := h.o.BuildRequest(true)

	assert.ErrorIs(t, err, request.ErrNoTasks)
	assert.Equal(t, before, h.log.Len())
	assert.Empty(t, h.be.executions())
}
