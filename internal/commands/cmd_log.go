package commands

import (
	"context"
	"path/filepath"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/logging"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/internal/store/jsonfile"
	"github.com/marcelomcd/apontador/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// LogCmd shows the activity log.
type LogCmd struct {
	flags *Flags
	app   *apontador.App

	limit  int
	follow bool
	asJSON bool
}

// NewLogCmd creates a new log command.
func NewLogCmd(flags *Flags, app *apontador.App) *LogCmd {
	return &LogCmd{flags: flags, app: app}
}

// Register adds the log command to the application.
func (cmd *LogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "log",
		Usage:     "Show the activity log",
		UsageText: "apontador log [-n <count>] [--follow] [--json]",
		Description: `The activity log records task loads, automation runs and their results,
oldest first. --follow keeps printing entries appended by other apontador
processes until interrupted.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show only the last n entries (0 shows all)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "follow",
				Aliases:     []string{"F"},
				Usage:       "wait for new entries",
				Destination: &cmd.follow,
			},
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

func (cmd *LogCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.New(c.Root().Writer)

	entries, err := cmd.app.Activity.List(ctx)
	if err != nil {
		return err
	}
	entries = tail(entries, cmd.limit)

	if cmd.asJSON {
		if entries == nil {
			entries = []activity.Entry{}
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, entries)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.ID] = true
		p.Entry(e)
	}

	if !cmd.follow {
		return nil
	}
	return cmd.followLog(ctx, p, seen)
}

func (cmd *LogCmd) followLog(ctx context.Context, p *printer.Printer, seen map[string]bool) error {
	path := cmd.app.Config.ActivityFile()

	w, err := jsonfile.NewWatcher(filepath.Dir(path), logging.Component("watcher"))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	changes := w.Watch(ctx, filepath.Base(path))
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			entries, err := cmd.app.Activity.List(ctx)
			if err != nil {
				printer.Ctx(ctx).Warnf("reading activity log: %v", err)
				continue
			}
			for _, e := range entries {
				if seen[e.ID] {
					continue
				}
				seen[e.ID] = true
				p.Entry(e)
			}
		}
	}
}

func tail(entries []activity.Entry, n int) []activity.Entry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
