package commands

import (
	"context"
	"fmt"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/urfave/cli/v3"
)

// TaskRefCompleter suggests the row numbers of the selectable tasks in the
// current snapshot, with the task label as the description.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskRefCompleter(app *apontador.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if typingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		w := cmd.Root().Writer
		for i, t := range app.Orchestrator.Catalog().Tasks {
			if !t.Selectable() {
				continue
			}
			_, _ = fmt.Fprintf(w, "%d:%s\n", i+1, t.Label())
		}
	}
}

// PeriodIDCompleter suggests the ids of the planned periods.
func PeriodIDCompleter(app *apontador.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if typingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		w := cmd.Root().Writer
		for _, p := range app.Orchestrator.State().Planner.List() {
			_, _ = fmt.Fprintf(w, "%d:%s - %s\n", p.ID, p.Start, p.End)
		}
	}
}

func typingFlag(cmd *cli.Command) bool {
	args := cmd.Args()
	if !args.Present() {
		return false
	}
	last := args.Slice()[args.Len()-1]
	return len(last) > 0 && last[0] == '-'
}
