package commands

import (
	"context"
	"fmt"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/urfave/cli/v3"
)

// MonthCmd selects the month being worked on.
type MonthCmd struct {
	flags *Flags
	app   *apontador.App
}

// NewMonthCmd creates a new month command.
func NewMonthCmd(flags *Flags, app *apontador.App) *MonthCmd {
	return &MonthCmd{flags: flags, app: app}
}

// Register adds the month command to the application.
func (cmd *MonthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "month",
		Usage: "Show or select the month being filled",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Select the month",
				UsageText: "apontador month set <MM/YYYY>",
				Action:    cmd.runSet,
			},
			{
				Name:   "show",
				Usage:  "Show the selected month",
				Action: cmd.runShow,
			},
		},
		Action: cmd.runShow,
	})

	return app
}

func (cmd *MonthCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: apontador month set <MM/YYYY>", 1)
	}

	month, year, err := parseMonthArg(c.Args().First())
	if err != nil {
		return err
	}

	o := cmd.app.Orchestrator
	if err := o.SetMonth(ctx, month, year); err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("selected %02d/%d", month, year)
	if o.Catalog().Empty() {
		p.Infof("no cached tasks for this month, run 'apontador tasks load'")
	}
	return nil
}

func (cmd *MonthCmd) runShow(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Orchestrator.State()
	_, err := fmt.Fprintf(c.Root().Writer, "%02d/%d\n", st.Month, st.Year)
	return err
}
