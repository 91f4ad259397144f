package commands

import (
	"context"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/urfave/cli/v3"
)

// ModeCmd switches between full-month and periods planning.
type ModeCmd struct {
	flags *Flags
	app   *apontador.App

	taskRef string
}

// NewModeCmd creates a new mode command.
func NewModeCmd(flags *Flags, app *apontador.App) *ModeCmd {
	return &ModeCmd{flags: flags, app: app}
}

// Register adds the mode command to the application.
func (cmd *ModeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "mode",
		Usage: "Choose how the month is filled",
		Description: `full-month books every business day of the selected month with one task.
periods books the date ranges declared with 'apontador period'.

Examples:
  apontador mode full --task 3
  apontador mode full --task "Acme / Portal / Dev"
  apontador mode periods`,
		Commands: []*cli.Command{
			{
				Name:      "full",
				Aliases:   []string{"full-month"},
				Usage:     "Fill the whole month with one task",
				UsageText: "apontador mode full [--task <row|client/project/task>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "task",
						Aliases:     []string{"t"},
						Usage:       "task row number or key; empty clears the choice",
						Destination: &cmd.taskRef,
					},
				},
				ShellComplete: TaskRefCompleter(cmd.app),
				Action:        cmd.runFull,
			},
			{
				Name:    "periods",
				Aliases: []string{"period"},
				Usage:   "Fill the declared periods",
				Action:  cmd.runPeriods,
			},
		},
	})

	return app
}

func (cmd *ModeCmd) runFull(ctx context.Context, c *cli.Command) error {
	o := cmd.app.Orchestrator
	p := printer.Ctx(ctx)

	if err := o.SetMode(ctx, request.ModeFullMonth); err != nil {
		return err
	}

	if c.IsSet("task") {
		t, err := o.SetFullMonthTask(ctx, cmd.taskRef)
		if err != nil {
			return err
		}
		if cmd.taskRef != "" {
			p.Successf("full-month mode with task %s", t.Label())
			return nil
		}
	}

	st := o.State()
	if st.FullMonthTask.IsZero() {
		p.Successf("full-month mode, no task chosen (the first task will be used)")
		return nil
	}
	p.Successf("full-month mode with task %s", st.FullMonthTask)
	return nil
}

func (cmd *ModeCmd) runPeriods(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Orchestrator.SetMode(ctx, request.ModePeriods); err != nil {
		return err
	}

	n := cmd.app.Orchestrator.State().Planner.Len()
	printer.Ctx(ctx).Successf("periods mode, %d periods planned", n)
	return nil
}
