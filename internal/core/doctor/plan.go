package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/marcelomcd/apontador/internal/core/request"
)

// PlanCheck dry-runs the request builder over the current plan.
type PlanCheck struct {
	input request.Input
}

// NewPlanCheck creates a new plan check.
func NewPlanCheck(input request.Input) *PlanCheck {
	return &PlanCheck{input: input}
}

func (c *PlanCheck) Name() string {
	return "Plan"
}

func (c *PlanCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	req, err := request.Build(c.input)
	if err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Items = append(result.Items, item(fe.Field, StatusFail, fe.Err.Error()))
			}
			return result
		}
		result.Items = append(result.Items, item(string(c.input.Mode), StatusFail, err.Error()))
		return result
	}

	result.Items = append(result.Items, item(string(c.input.Mode), StatusPass, fmt.Sprintf("%d entries ready", len(req.Periods))))
	if c.input.UsesPlaceholderTask() {
		result.Items = append(result.Items, item("task", StatusWarn, "no task chosen, the first catalog task will be used"))
	}

	for i, p := range request.Preview(req) {
		label := fmt.Sprintf("entry %d", i+1)
		switch {
		case p.DateError != "":
			result.Items = append(result.Items, item(label, StatusWarn, p.DateError))
		case p.ShortDescriptions():
			result.Items = append(result.Items, item(label, StatusWarn, fmt.Sprintf(
				"%d business days but %d morning / %d afternoon description lines",
				p.BusinessDays, p.MorningLines, p.AfternoonLines)))
		}
	}

	return result
}
