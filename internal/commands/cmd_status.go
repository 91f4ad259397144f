package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"
	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// StatusCmd summarizes the backend and the local plan.
type StatusCmd struct {
	flags *Flags
	app   *apontador.App

	asJSON bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags, app *apontador.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show backend connectivity and the current plan",
		UsageText: "apontador status [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

type statusReport struct {
	Backend struct {
		Reachable bool   `json:"reachable"`
		Version   string `json:"version,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"backend"`
	Credentials *backend.CredentialStatus `json:"credentials,omitempty"`
	Automation  *backend.AutomationStatus `json:"automation,omitempty"`

	Mode       request.Mode `json:"mode"`
	Month      int          `json:"month"`
	Year       int          `json:"year"`
	Tasks      int          `json:"tasks"`
	Selectable int          `json:"selectable_tasks"`
	LoadedAt   *time.Time   `json:"tasks_loaded_at,omitempty"`
	Periods    int          `json:"periods"`
	Ready      int          `json:"ready_periods"`
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	o := cmd.app.Orchestrator
	var rep statusReport

	h, err := o.CheckBackend(ctx)
	if err != nil {
		rep.Backend.Error = backend.Message(err)
	} else {
		rep.Backend.Reachable = true
		rep.Backend.Version = h.Version

		if creds, err := o.Credentials(ctx); err == nil {
			rep.Credentials = &creds
		}
		if st, err := o.AutomationStatus(ctx); err == nil {
			rep.Automation = &st
		}
	}

	st := o.State()
	snap := o.Catalog()
	rep.Mode, rep.Month, rep.Year = st.Mode, st.Month, st.Year
	rep.Tasks, rep.Selectable = snap.Len(), len(snap.Selectable())
	if !snap.LoadedAt.IsZero() {
		rep.LoadedAt = &snap.LoadedAt
	}
	for _, p := range st.Planner.List() {
		rep.Periods++
		if p.Complete() {
			rep.Ready++
		}
	}

	if cmd.asJSON {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, rep); err != nil {
			return err
		}
	} else {
		writeStatus(c.Root().Writer, rep)
	}

	if !rep.Backend.Reachable {
		return cli.Exit("", 1)
	}
	return nil
}

func writeStatus(w io.Writer, rep statusReport) {
	tbl := uitable.New()
	tbl.Separator = "  "

	label := func(s string) string { return styles.TextMutedStyle.Render(s) }

	switch {
	case rep.Backend.Reachable && rep.Backend.Version != "":
		tbl.AddRow(label("backend"), styles.TextSuccessStyle.Render("connected ("+rep.Backend.Version+")"))
	case rep.Backend.Reachable:
		tbl.AddRow(label("backend"), styles.TextSuccessStyle.Render("connected"))
	default:
		tbl.AddRow(label("backend"), styles.TextErrorStyle.Render(rep.Backend.Error))
	}

	if rep.Credentials != nil {
		if rep.Credentials.HasCredentials {
			tbl.AddRow(label("credentials"), rep.Credentials.Email)
		} else {
			tbl.AddRow(label("credentials"), styles.TextWarningStyle.Render("not set"))
		}
	}

	if rep.Automation != nil {
		browser := "closed"
		if rep.Automation.BrowserOpen {
			browser = "open"
		}
		tbl.AddRow(label("browser"), browser)
	}

	tbl.AddRow(label("month"), fmt.Sprintf("%02d/%d", rep.Month, rep.Year))
	tbl.AddRow(label("mode"), string(rep.Mode))

	tasks := "not loaded"
	if rep.Tasks > 0 {
		tasks = fmt.Sprintf("%d loaded, %d with balance", rep.Tasks, rep.Selectable)
		if rep.LoadedAt != nil {
			tasks += ", fetched " + rep.LoadedAt.Local().Format("02/01 15:04")
		}
	}
	tbl.AddRow(label("tasks"), tasks)
	tbl.AddRow(label("periods"), fmt.Sprintf("%d planned, %d ready", rep.Periods, rep.Ready))

	_, _ = fmt.Fprintln(w, tbl)
}
