package commands

import (
	"context"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type RunCmd struct {
	flags *Flags
	app   *apontador.App

	headless bool
	asJSON   bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *apontador.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Submit the plan to the automation backend",
		UsageText: "apontador run [--headless] [--json]",
		Description: `Builds the request from the current plan and submits it once. The attempt
ends in one of:

  succeeded         every entry was filled             (exit 0)
  partially-failed  the backend reported entry errors  (exit 2)
  failed            the request was rejected locally or
                    the backend could not be reached   (exit 1)

Nothing is retried; run again after fixing the reported problem.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "headless",
				Usage:       "run the browser without a window (defaults to automation.headless)",
				Destination: &cmd.headless,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the outcome as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

type runResultJSON struct {
	Outcome  automation.Outcome       `json:"outcome"`
	Request  *request.Request         `json:"request,omitempty"`
	Response *backend.ExecutionResult `json:"response,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	headless := cmd.flags.Config.Headless()
	if c.IsSet("headless") {
		headless = cmd.headless
	}

	res := cmd.app.Orchestrator.Execute(ctx, headless)

	if cmd.asJSON {
		out := runResultJSON{Outcome: res.Outcome}
		if res.Outcome != automation.OutcomeRejected {
			out.Request = &res.Request
		}
		if res.Err == nil || res.Outcome == automation.OutcomePartiallyFailed {
			out.Response = &res.Response
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	}

	// Result messages were already printed from the activity log.
	if code := exitCode(res.Outcome); code != ExitOK {
		return cli.Exit("", code)
	}
	return nil
}
