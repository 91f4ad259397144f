package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/urfave/cli/v3"
)

// Exit codes of the run command.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitPartial = 2
)

// exitCode maps an automation outcome to the process exit code.
func exitCode(outcome automation.Outcome) int {
	switch outcome {
	case automation.OutcomeSucceeded:
		return ExitOK
	case automation.OutcomePartiallyFailed:
		return ExitPartial
	default:
		return ExitFailed
	}
}

// parseMonthArg parses "MM/YYYY" (a single digit month is accepted).
func parseMonthArg(s string) (month, year int, err error) {
	m, y, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid month %q (want MM/YYYY)", s)
	}
	month, err = strconv.Atoi(m)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want MM/YYYY)", s)
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q (want MM/YYYY)", s)
	}
	return month, year, nil
}

// periodIDArg reads the period id from the first positional argument.
func periodIDArg(c *cli.Command) (period.ID, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("period id is required")
	}
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period id %q", raw)
	}
	return period.ID(n), nil
}
