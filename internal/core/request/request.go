// Package request turns the user's plan (a whole month, or explicit date
// ranges bound to tasks) into the payload submitted to the automation backend.
package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/task"
)

// DateLayout is the DD/MM/YYYY form exchanged with the backend.
const DateLayout = "02/01/2006"

// Mode selects where the submitted date ranges come from.
type Mode string

const (
	ModeFullMonth Mode = "full-month"
	ModePeriods   Mode = "periods"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeFullMonth || m == ModePeriods
}

// ParseMode accepts the canonical names plus a few short aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full-month", "full", "month":
		return ModeFullMonth, nil
	case "periods", "period":
		return ModePeriods, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want full-month or periods)", s)
	}
}

// Entry is one date range in the submitted payload.
type Entry struct {
	Start     string `json:"de"`
	End       string `json:"ate"`
	TaskIndex int    `json:"task_index"`
	Morning   string `json:"desc_morning"`
	Afternoon string `json:"desc_afternoon"`
}

// Request is the payload for the automation endpoint.
type Request struct {
	Periods  []Entry `json:"periods"`
	Headless bool    `json:"headless"`
}

// Validation failure reasons.
const (
	ReasonNoTasks      = "no tasks loaded"
	ReasonNoPeriods    = "no periods defined"
	ReasonIncomplete   = "incomplete period"
	ReasonUnknownTask  = "unknown task"
	ReasonInvalidMonth = "invalid month"
)

// ValidationError is a local, pre-submission failure. Err, when set, carries
// field level detail as criterio.FieldErrors.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap exposes Err and, since criterio.FieldErrors does not unwrap, each of
// its field errors so errors.Is reaches the underlying causes.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return nil
	}
	errs := []error{e.Err}
	var fields criterio.FieldErrors
	if errors.As(e.Err, &fields) {
		for _, fe := range fields {
			errs = append(errs, fe)
		}
	}
	return errs
}

// Is matches on Reason so callers can use the sentinels below with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrNoTasks      = &ValidationError{Reason: ReasonNoTasks}
	ErrNoPeriods    = &ValidationError{Reason: ReasonNoPeriods}
	ErrIncomplete   = &ValidationError{Reason: ReasonIncomplete}
	ErrUnknownTask  = &ValidationError{Reason: ReasonUnknownTask}
	ErrInvalidMonth = &ValidationError{Reason: ReasonInvalidMonth}
)

// Input is everything the builder reads. It is a value so a build never
// observes a half-updated session.
type Input struct {
	Mode     Mode
	Month    int
	Year     int
	Periods  []period.Period
	Catalog  task.Catalog
	Headless bool

	// FullMonthTask is the task used in full-month mode. When zero the entry
	// carries index 0, i.e. the first task of the catalog.
	FullMonthTask task.Key
}

// UsesPlaceholderTask reports whether a full-month build falls back to the
// first catalog task because none was chosen.
func (in Input) UsesPlaceholderTask() bool {
	return in.Mode == ModeFullMonth && in.FullMonthTask.IsZero()
}

// Build validates the input and produces the payload. Validation fails fast:
// no request is returned alongside an error.
func Build(in Input) (Request, error) {
	var (
		entries []Entry
		err     error
	)

	switch in.Mode {
	case ModeFullMonth:
		entries, err = buildFullMonth(in)
	case ModePeriods:
		entries, err = buildPeriods(in)
	default:
		return Request{}, fmt.Errorf("build request: unknown mode %q", in.Mode)
	}
	if err != nil {
		return Request{}, err
	}

	return Request{Periods: entries, Headless: in.Headless}, nil
}

func buildFullMonth(in Input) ([]Entry, error) {
	if in.Catalog.Empty() {
		return nil, &ValidationError{Reason: ReasonNoTasks}
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, &ValidationError{
			Reason: ReasonInvalidMonth,
			Err:    criterio.NewFieldErrors("month", fmt.Errorf("%d is not between 1 and 12", in.Month)),
		}
	}

	idx := 0
	if !in.FullMonthTask.IsZero() {
		i, err := resolve(in.Catalog, in.FullMonthTask)
		if err != nil {
			return nil, &ValidationError{
				Reason: ReasonUnknownTask,
				Err:    criterio.NewFieldErrors("full_month_task", err),
			}
		}
		idx = i
	}

	start, end := MonthSpan(in.Month, in.Year)
	return []Entry{{Start: start, End: end, TaskIndex: idx}}, nil
}

func buildPeriods(in Input) ([]Entry, error) {
	if len(in.Periods) == 0 {
		return nil, &ValidationError{Reason: ReasonNoPeriods}
	}
	if err := ValidatePeriods(in.Periods); err != nil {
		return nil, err
	}

	var errs criterio.FieldErrorsBuilder
	entries := make([]Entry, 0, len(in.Periods))
	for _, p := range in.Periods {
		idx, err := resolve(in.Catalog, p.Task)
		if err != nil {
			errs = errs.Append(periodField(p.ID, period.FieldTask), err)
			continue
		}
		entries = append(entries, Entry{
			Start:     p.Start,
			End:       p.End,
			TaskIndex: idx,
			Morning:   p.Morning,
			Afternoon: p.Afternoon,
		})
	}

	if err := errs.ToError(); err != nil {
		return nil, &ValidationError{Reason: ReasonUnknownTask, Err: err}
	}
	return entries, nil
}

// ValidatePeriods checks every period for completeness and reports all of the
// incomplete ones, not just the first.
func ValidatePeriods(periods []period.Period) error {
	var errs criterio.FieldErrorsBuilder
	for _, p := range periods {
		if missing := p.Missing(); len(missing) > 0 {
			errs = errs.Append(periodField(p.ID, ""), fmt.Errorf("missing %s", strings.Join(missing, ", ")))
		}
	}

	if err := errs.ToError(); err != nil {
		return &ValidationError{Reason: ReasonIncomplete, Err: err}
	}
	return nil
}

func resolve(c task.Catalog, k task.Key) (int, error) {
	i, ok := c.IndexOf(k)
	if !ok {
		return -1, fmt.Errorf("%s: %w", k, task.ErrTaskNotFound)
	}
	if t := c.Tasks[i]; !t.Selectable() {
		return -1, fmt.Errorf("%s (balance %s): %w", k, t.Balance, task.ErrNotSelectable)
	}
	return i, nil
}

func periodField(id period.ID, field string) string {
	name := fmt.Sprintf("periods[id=%d]", id)
	if field != "" {
		name += "." + field
	}
	return name
}

// DaysIn returns the number of days in the month, accounting for leap years.
func DaysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthSpan returns the first and last calendar day of the month as
// DD/MM/YYYY text.
func MonthSpan(month, year int) (start, end string) {
	start = fmt.Sprintf("01/%02d/%04d", month, year)
	end = fmt.Sprintf("%02d/%02d/%04d", DaysIn(month, year), month, year)
	return start, end
}

// Periods re-derives a period list from a payload. Tasks are recovered by
// position in the given catalog; indexes outside it leave the task unset.
func Periods(req Request, c task.Catalog) []period.Period {
	out := make([]period.Period, 0, len(req.Periods))
	for i, e := range req.Periods {
		p := period.Period{
			ID:        period.ID(i + 1),
			Start:     e.Start,
			End:       e.End,
			Morning:   e.Morning,
			Afternoon: e.Afternoon,
		}
		if t, ok := c.At(e.TaskIndex); ok {
			p.Task = t.Key()
		}
		out = append(out, p)
	}
	return out
}
