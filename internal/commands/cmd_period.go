package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/period"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// PeriodCmd edits the periods planned for periods mode.
type PeriodCmd struct {
	flags *Flags
	app   *apontador.App

	start     string
	end       string
	taskRef   string
	morning   string
	afternoon string

	asJSON bool
}

// NewPeriodCmd creates a new period command.
func NewPeriodCmd(flags *Flags, app *apontador.App) *PeriodCmd {
	return &PeriodCmd{flags: flags, app: app}
}

// Register adds the period command to the application.
func (cmd *PeriodCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "period",
		Aliases: []string{"periods"},
		Usage:   "Plan date ranges bound to tasks",
		Description: `Each period books one task on every business day between its start and end
dates (DD/MM/YYYY). Descriptions are one line per business day; a literal
"\n" in a flag value starts a new line.

Examples:
  apontador period add --start 01/02/2024 --end 09/02/2024 --task 1
  apontador period set 1 --morning "standup\nreview"
  apontador period rm 1
  apontador period ls`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append a period",
				UsageText: "apontador period add [--start <date>] [--end <date>] [--task <ref>] [--morning <text>] [--afternoon <text>]",
				Flags:     cmd.editFlags(),
				Action:    cmd.runAdd,
			},
			{
				Name:          "set",
				Usage:         "Change fields of a period",
				UsageText:     "apontador period set <id> [--start <date>] [--end <date>] [--task <ref>] [--morning <text>] [--afternoon <text>]",
				Flags:         cmd.editFlags(),
				ShellComplete: PeriodIDCompleter(cmd.app),
				Action:        cmd.runSet,
			},
			{
				Name:          "remove",
				Aliases:       []string{"rm"},
				Usage:         "Delete a period",
				UsageText:     "apontador period rm <id>",
				ShellComplete: PeriodIDCompleter(cmd.app),
				Action:        cmd.runRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the planned periods",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.asJSON,
					},
				},
				Action: cmd.runList,
			},
		},
	})

	return app
}

func (cmd *PeriodCmd) editFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "first date (DD/MM/YYYY)", Destination: &cmd.start},
		&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "last date (DD/MM/YYYY)", Destination: &cmd.end},
		&cli.StringFlag{Name: "task", Aliases: []string{"t"}, Usage: "task row number or key", Destination: &cmd.taskRef},
		&cli.StringFlag{Name: "morning", Usage: "morning descriptions, one line per business day", Destination: &cmd.morning},
		&cli.StringFlag{Name: "afternoon", Usage: "afternoon descriptions, one line per business day", Destination: &cmd.afternoon},
	}
}

// patch builds a period patch from the flags that were given.
func (cmd *PeriodCmd) patch(c *cli.Command) (period.Patch, error) {
	var patch period.Patch

	if c.IsSet("start") {
		v := strings.TrimSpace(cmd.start)
		patch.Start = &v
	}
	if c.IsSet("end") {
		v := strings.TrimSpace(cmd.end)
		patch.End = &v
	}
	if c.IsSet("task") {
		t, err := cmd.app.Orchestrator.ResolveTask(cmd.taskRef)
		if err != nil {
			return period.Patch{}, err
		}
		k := t.Key()
		patch.Task = &k
	}
	if c.IsSet("morning") {
		v := unescapeLines(cmd.morning)
		patch.Morning = &v
	}
	if c.IsSet("afternoon") {
		v := unescapeLines(cmd.afternoon)
		patch.Afternoon = &v
	}

	return patch, nil
}

func (cmd *PeriodCmd) runAdd(ctx context.Context, c *cli.Command) error {
	patch, err := cmd.patch(c)
	if err != nil {
		return err
	}

	p, err := cmd.app.Orchestrator.AddPeriod(ctx, patch)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("added period %d", p.ID)
	cmd.hintMissing(ctx, p)
	return nil
}

func (cmd *PeriodCmd) runSet(ctx context.Context, c *cli.Command) error {
	id, err := periodIDArg(c)
	if err != nil {
		return err
	}

	patch, err := cmd.patch(c)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to change, pass at least one of --start, --end, --task, --morning or --afternoon")
	}

	p, found, err := cmd.app.Orchestrator.UpdatePeriod(ctx, id, patch)
	if err != nil {
		return err
	}
	if !found {
		printer.Ctx(ctx).Warnf("no period %d", id)
		return nil
	}

	printer.Ctx(ctx).Successf("updated period %d", p.ID)
	cmd.hintMissing(ctx, p)
	return nil
}

func (cmd *PeriodCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := periodIDArg(c)
	if err != nil {
		return err
	}

	removed, err := cmd.app.Orchestrator.RemovePeriod(ctx, id)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	if !removed {
		p.Warnf("no period %d", id)
		return nil
	}
	p.Successf("removed period %d", id)
	return nil
}

func (cmd *PeriodCmd) runList(ctx context.Context, c *cli.Command) error {
	periods := cmd.app.Orchestrator.State().Planner.List()

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, periods)
	}

	if len(periods) == 0 {
		printer.Ctx(ctx).Infof("no periods planned, add one with 'apontador period add'")
		return nil
	}

	writePeriodTable(c.Root().Writer, periods)
	return nil
}

func (cmd *PeriodCmd) hintMissing(ctx context.Context, p period.Period) {
	if missing := p.Missing(); len(missing) > 0 {
		printer.Ctx(ctx).Infof("period %d still needs: %s", p.ID, strings.Join(missing, ", "))
	}
}

func writePeriodTable(w io.Writer, periods []period.Period) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(
		styles.TableHeaderStyle.Render("ID"),
		styles.TableHeaderStyle.Render("START"),
		styles.TableHeaderStyle.Render("END"),
		styles.TableHeaderStyle.Render("TASK"),
		styles.TableHeaderStyle.Render("MORNING"),
		styles.TableHeaderStyle.Render("AFTERNOON"),
		styles.TableHeaderStyle.Render("STATUS"),
	)
	for _, p := range periods {
		taskLabel := "-"
		if !p.Task.IsZero() {
			taskLabel = p.Task.String()
		}

		status := styles.TextSuccessStyle.Render("ready")
		if missing := p.Missing(); len(missing) > 0 {
			status = styles.TextWarningStyle.Render("missing " + strings.Join(missing, ", "))
		}

		tbl.AddRow(p.ID, orDash(p.Start), orDash(p.End), taskLabel,
			lineCount(p.Morning), lineCount(p.Afternoon), status)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func lineCount(s string) string {
	n := request.DescriptionLines(s)
	switch n {
	case 0:
		return "-"
	case 1:
		return "1 line"
	default:
		return fmt.Sprintf("%d lines", n)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// unescapeLines turns the two character sequence \n into a newline so multi
// line descriptions can be passed as a single flag value.
func unescapeLines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
