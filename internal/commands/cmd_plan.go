package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// PlanCmd previews and imports the request submitted by run.
type PlanCmd struct {
	flags *Flags
	app   *apontador.App

	asJSON bool
	reader iojson.FileReader[request.Request]
}

// NewPlanCmd creates a new plan command.
func NewPlanCmd(flags *Flags, app *apontador.App) *PlanCmd {
	return &PlanCmd{flags: flags, app: app}
}

// Register adds the plan command to the application.
func (cmd *PlanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "plan",
		Usage: "Preview or import the automation request",
		Description: `plan show builds the request exactly as run would, without sending it.
Its JSON form can be saved and imported again as periods.

Examples:
  apontador plan show
  apontador plan show --json > february.json
  apontador plan import -f february.json`,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Build the request without submitting it",
				UsageText: "apontador plan show [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "print the request payload as JSON",
						Destination: &cmd.asJSON,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "import",
				Usage:     "Append the periods of a saved request",
				UsageText: "apontador plan import [-f <file>]",
				Flags:     []cli.Flag{cmd.reader.Flag()},
				Action:    cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *PlanCmd) runShow(ctx context.Context, c *cli.Command) error {
	o := cmd.app.Orchestrator
	p := printer.Ctx(ctx)

	req, err := o.BuildRequest(cmd.flags.Config.Headless())
	if err != nil {
		p.Errorf("%v", err)
		return cli.Exit("", 1)
	}

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, req)
	}

	st := o.State()
	p.Printf("%s %s  %s %02d/%d",
		styles.TextMutedStyle.Render("mode"), st.Mode,
		styles.TextMutedStyle.Render("month"), st.Month, st.Year)

	in := o.Input(req.Headless)
	if in.UsesPlaceholderTask() {
		p.Warnf("no task chosen for the full month, the first task will be used")
	}

	previews := request.Preview(req)
	writePreviewTable(c.Root().Writer, previews, o.Catalog())

	for i, pv := range previews {
		switch {
		case pv.DateError != "":
			p.Warnf("entry %d: %s", i+1, pv.DateError)
		case pv.ShortDescriptions():
			p.Warnf("entry %d: fewer description lines than its %d business days", i+1, pv.BusinessDays)
		}
	}
	return nil
}

func (cmd *PlanCmd) runImport(ctx context.Context, c *cli.Command) error {
	req, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	o := cmd.app.Orchestrator
	imported, err := o.ImportPlan(ctx, req)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	for _, pd := range imported {
		if missing := pd.Missing(); len(missing) > 0 {
			p.Warnf("period %d is missing %v", pd.ID, missing)
		}
	}
	if o.State().Mode != request.ModePeriods {
		p.Infof("switch to periods mode with 'apontador mode periods' to submit them")
	}
	return nil
}

func writePreviewTable(w io.Writer, previews []request.EntryPreview, c task.Catalog) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(
		styles.TableHeaderStyle.Render("#"),
		styles.TableHeaderStyle.Render("START"),
		styles.TableHeaderStyle.Render("END"),
		styles.TableHeaderStyle.Render("TASK"),
		styles.TableHeaderStyle.Render("DAYS"),
		styles.TableHeaderStyle.Render("MORNING"),
		styles.TableHeaderStyle.Render("AFTERNOON"),
	)
	for i, pv := range previews {
		label := fmt.Sprintf("row %d", pv.Entry.TaskIndex+1)
		if t, ok := c.At(pv.Entry.TaskIndex); ok {
			label = t.Key().String()
		}
		tbl.AddRow(i+1, pv.Entry.Start, pv.Entry.End, label, pv.BusinessDays,
			lineCount(pv.Entry.Morning), lineCount(pv.Entry.Afternoon))
	}
	_, _ = fmt.Fprintln(w, tbl)
}
