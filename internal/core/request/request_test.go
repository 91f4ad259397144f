package request

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyDev     = task.Key{Client: "Acme", Project: "Portal", Task: "Dev"}
	keyQA      = task.Key{Client: "Acme", Project: "Portal", Task: "QA"}
	keySupport = task.Key{Client: "Globex", Project: "ERP", Task: "Support"}
)

func testCatalog() task.Catalog {
	return task.NewCatalog(2, 2024, []task.Task{
		{Client: "Acme", Project: "Portal", Name: "Dev", Balance: "10,0"},
		{Client: "Acme", Project: "Portal", Name: "QA", Balance: "0,0"},
		{Client: "Globex", Project: "ERP", Name: "Support", Balance: "4,5"},
	}, time.Now())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"full-month": ModeFullMonth,
		"full":       ModeFullMonth,
		" MONTH ":    ModeFullMonth,
		"periods":    ModePeriods,
		"period":     ModePeriods,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("weekly")
	assert.Error(t, err)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2, 2024))
	assert.Equal(t, 28, DaysIn(2, 2023))
	assert.Equal(t, 28, DaysIn(2, 1900))
	assert.Equal(t, 29, DaysIn(2, 2000))
	assert.Equal(t, 31, DaysIn(12, 2025))
	assert.Equal(t, 30, DaysIn(4, 2025))
}

func TestBuild_FullMonthLeapYear(t *testing.T) {
	req, err := Build(Input{Mode: ModeFullMonth, Month: 2, Year: 2024, Catalog: testCatalog(), Headless: true})
	require.NoError(t, err)

	require.Len(t, req.Periods, 1)
	e := req.Periods[0]
	assert.Equal(t, "01/02/2024", e.Start)
	assert.Equal(t, "29/02/2024", e.End)
	assert.Empty(t, e.Morning)
	assert.Empty(t, e.Afternoon)
	assert.Equal(t, 0, e.TaskIndex)
	assert.True(t, req.Headless)
}

func TestBuild_FullMonthCommonYear(t *testing.T) {
	req, err := Build(Input{Mode: ModeFullMonth, Month: 2, Year: 2023, Catalog: testCatalog()})
	require.NoError(t, err)

	require.Len(t, req.Periods, 1)
	assert.Equal(t, "01/02/2023", req.Periods[0].Start)
	assert.Equal(t, "28/02/2023", req.Periods[0].End)
}

func TestBuild_FullMonthRequiresTasks(t *testing.T) {
	_, err := Build(Input{Mode: ModeFullMonth, Month: 2, Year: 2024})

	assert.ErrorIs(t, err, ErrNoTasks)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonNoTasks, verr.Reason)
}

func TestBuild_FullMonthInvalidMonth(t *testing.T) {
	_, err := Build(Input{Mode: ModeFullMonth, Month: 13, Year: 2024, Catalog: testCatalog()})
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestBuild_FullMonthChosenTask(t *testing.T) {
	in := Input{Mode: ModeFullMonth, Month: 2, Year: 2024, Catalog: testCatalog(), FullMonthTask: keySupport}
	assert.False(t, in.UsesPlaceholderTask())

	req, err := Build(in)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Periods[0].TaskIndex)
}

func TestBuild_FullMonthChosenTaskWithoutBalance(t *testing.T) {
	_, err := Build(Input{Mode: ModeFullMonth, Month: 2, Year: 2024, Catalog: testCatalog(), FullMonthTask: keyQA})

	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.ErrorIs(t, err, task.ErrNotSelectable)
}

func TestBuild_PeriodsRequiresPeriods(t *testing.T) {
	_, err := Build(Input{Mode: ModePeriods, Catalog: testCatalog()})
	assert.ErrorIs(t, err, ErrNoPeriods)
}

func TestBuild_PeriodsReportsEveryIncompletePeriod(t *testing.T) {
	periods := []period.Period{
		{ID: 1, Start: "01/02/2024", End: "09/02/2024", Task: keyDev},
		{ID: 2, Start: "12/02/2024"},
		{ID: 3, End: "29/02/2024", Task: keySupport},
	}

	_, err := Build(Input{Mode: ModePeriods, Periods: periods, Catalog: testCatalog()})
	assert.ErrorIs(t, err, ErrIncomplete)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Contains(t, fieldErrs[0].Field, "periods[id=2]")
	assert.Contains(t, fieldErrs[0].Err.Error(), "end, task")
	assert.Contains(t, fieldErrs[1].Field, "periods[id=3]")
	assert.Contains(t, fieldErrs[1].Err.Error(), "start")
}

func TestValidatePeriods(t *testing.T) {
	complete := []period.Period{
		{ID: 1, Start: "01/02/2024", End: "02/02/2024", Task: keyDev},
		{ID: 2, Start: "05/02/2024", End: "06/02/2024", Task: keySupport},
	}
	assert.NoError(t, ValidatePeriods(complete))
	assert.NoError(t, ValidatePeriods(nil))

	withGap := append(complete, period.Period{ID: 3, Start: "07/02/2024", End: "08/02/2024"})
	assert.ErrorIs(t, ValidatePeriods(withGap), ErrIncomplete)
}

func TestBuild_PeriodsUnknownTask(t *testing.T) {
	periods := []period.Period{
		{ID: 1, Start: "01/02/2024", End: "09/02/2024", Task: task.Key{Client: "Gone", Project: "X", Task: "Y"}},
		{ID: 2, Start: "12/02/2024", End: "16/02/2024", Task: keyQA},
		{ID: 3, Start: "19/02/2024", End: "23/02/2024", Task: keyDev},
	}

	_, err := Build(Input{Mode: ModePeriods, Periods: periods, Catalog: testCatalog()})
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	assert.ErrorIs(t, err, task.ErrNotSelectable)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Contains(t, fieldErrs[0].Field, "periods[id=1].task")
	assert.Contains(t, fieldErrs[1].Field, "periods[id=2].task")
}

func TestBuild_PeriodsMapsInOrder(t *testing.T) {
	periods := []period.Period{
		{ID: 4, Start: "19/02/2024", End: "23/02/2024", Task: keySupport, Morning: "a\nb", Afternoon: "c"},
		{ID: 1, Start: "01/02/2024", End: "09/02/2024", Task: keyDev},
	}

	req, err := Build(Input{Mode: ModePeriods, Periods: periods, Catalog: testCatalog(), Headless: true})
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Start: "19/02/2024", End: "23/02/2024", TaskIndex: 2, Morning: "a\nb", Afternoon: "c"},
		{Start: "01/02/2024", End: "09/02/2024", TaskIndex: 0},
	}, req.Periods)
	assert.True(t, req.Headless)
}

func TestBuild_PeriodsDoesNotCheckDateOrder(t *testing.T) {
	periods := []period.Period{
		{ID: 1, Start: "31/12/2024", End: "01/01/2024", Task: keyDev},
		{ID: 2, Start: "not a date", End: "either", Task: keyDev},
	}

	_, err := Build(Input{Mode: ModePeriods, Periods: periods, Catalog: testCatalog()})
	assert.NoError(t, err)
}

func TestBuild_UnknownMode(t *testing.T) {
	_, err := Build(Input{Mode: "weekly"})
	require.Error(t, err)

	var verr *ValidationError
	assert.NotErrorAs(t, err, &verr)
}

func TestPeriods_RoundTrip(t *testing.T) {
	c := testCatalog()
	periods := []period.Period{
		{ID: 1, Start: "01/02/2024", End: "09/02/2024", Task: keyDev, Morning: "m1\nm2", Afternoon: "a1"},
		{ID: 2, Start: "12/02/2024", End: "16/02/2024", Task: keySupport, Afternoon: "only afternoon"},
	}

	req, err := Build(Input{Mode: ModePeriods, Periods: periods, Catalog: c})
	require.NoError(t, err)

	got := Periods(req, c)
	require.Len(t, got, len(periods))
	for i := range periods {
		assert.Equal(t, periods[i].Start, got[i].Start)
		assert.Equal(t, periods[i].End, got[i].End)
		assert.Equal(t, periods[i].Morning, got[i].Morning)
		assert.Equal(t, periods[i].Afternoon, got[i].Afternoon)
		assert.Equal(t, periods[i].Task, got[i].Task)
	}
}

func TestPeriods_IndexOutsideCatalog(t *testing.T) {
	got := Periods(Request{Periods: []Entry{{Start: "01/02/2024", End: "02/02/2024", TaskIndex: 9}}}, testCatalog())

	require.Len(t, got, 1)
	assert.True(t, got[0].Task.IsZero())
	assert.False(t, got[0].Complete())
}
