package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// TasksCmd implements the apontador tasks command group.
type TasksCmd struct {
	flags *Flags
	app   *apontador.App

	// load flags
	month int
	year  int

	// ls flags
	all    bool
	asJSON bool
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags, app *apontador.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command to the application.
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "Load and list the tasks available for a month",
		Description: `Tasks are fetched from the timesheet portal through the automation backend
and cached per month, so listing and referencing them works offline.

Examples:
  apontador tasks load                       # month selected in the plan
  apontador tasks load --month 2 --year 2024
  apontador tasks ls                         # tasks with remaining balance
  apontador tasks ls --all                   # every task`,
		Commands: []*cli.Command{
			cmd.loadCmd(),
			cmd.listCmd(),
		},
	})

	return app
}

func (cmd *TasksCmd) loadCmd() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Fetch the task list from the portal",
		UsageText: "apontador tasks load [--month <m>] [--year <yyyy>]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "month",
				Aliases:     []string{"m"},
				Usage:       "month to load (defaults to the selected month)",
				Destination: &cmd.month,
			},
			&cli.IntFlag{
				Name:        "year",
				Aliases:     []string{"y"},
				Usage:       "year to load (defaults to the selected year)",
				Destination: &cmd.year,
			},
		},
		Action: cmd.runLoad,
	}
}

func (cmd *TasksCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List the loaded tasks",
		UsageText: "apontador tasks ls [--all] [--json]",
		Description: `Lists the tasks of the selected month. Row numbers always follow the full
list, so "#3" keeps pointing at the same task with or without --all.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include tasks without remaining balance",
				Destination: &cmd.all,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TasksCmd) runLoad(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Orchestrator.State()
	month, year := st.Month, st.Year
	if c.IsSet("month") {
		month = cmd.month
	}
	if c.IsSet("year") {
		year = cmd.year
	}

	// The activity log already printed the outcome.
	if _, err := cmd.app.Orchestrator.LoadTasks(ctx, month, year); err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

type taskRow struct {
	Row        int  `json:"row"`
	Selectable bool `json:"selectable"`
	task.Task
}

func (cmd *TasksCmd) runList(ctx context.Context, c *cli.Command) error {
	snap := cmd.app.Orchestrator.Catalog()

	rows := make([]taskRow, 0, snap.Len())
	for i, t := range snap.Tasks {
		if !cmd.all && !t.Selectable() {
			continue
		}
		rows = append(rows, taskRow{Row: i + 1, Selectable: t.Selectable(), Task: t})
	}

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, rows)
	}

	if snap.Empty() {
		printer.Ctx(ctx).Warnf("no tasks loaded for %02d/%d, run 'apontador tasks load'", snap.Month, snap.Year)
		return nil
	}

	writeTaskTable(c.Root().Writer, rows)
	if hidden := snap.Len() - len(rows); hidden > 0 {
		printer.Ctx(ctx).Printf("%s", styles.TextMutedStyle.Render(
			fmt.Sprintf("%d tasks without balance hidden, use --all to show them", hidden)))
	}
	return nil
}

func writeTaskTable(w io.Writer, rows []taskRow) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(
		styles.TableHeaderStyle.Render("#"),
		styles.TableHeaderStyle.Render("CLIENT"),
		styles.TableHeaderStyle.Render("PROJECT"),
		styles.TableHeaderStyle.Render("TASK"),
		styles.TableHeaderStyle.Render("RELEASED"),
		styles.TableHeaderStyle.Render("BOOKED"),
		styles.TableHeaderStyle.Render("BALANCE"),
	)
	for _, r := range rows {
		balance := styles.TextSuccessStyle.Render(r.Balance)
		if !r.Selectable {
			balance = styles.TextMutedStyle.Render(r.Balance)
		}
		tbl.AddRow(r.Row, r.Client, r.Project, r.Name, r.HoursReleased, r.HoursBooked, balance)
	}
	_, _ = fmt.Fprintln(w, tbl)
}
