package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/commands"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/config"
	"github.com/marcelomcd/apontador/internal/core/eventbus"
	"github.com/marcelomcd/apontador/internal/core/logging"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/internal/store/catalog"
	"github.com/marcelomcd/apontador/internal/store/diskv"
	"github.com/marcelomcd/apontador/internal/store/jsonfile"
	"github.com/marcelomcd/apontador/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		bus       *eventbus.EventBus
		stopBus   context.CancelFunc
		apApp     = &apontador.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "apontador",
		Usage:     "Fill the monthly timesheet through the automation backend",
		UsageText: "apontador [global options] command [command options]",
		Description: `apontador plans a month of timesheet entries and hands them to the
automation backend, which logs into the portal and fills them in.

Typical flow:
  apontador credentials set
  apontador tasks load
  apontador mode full --task 1        # or: mode periods + period add
  apontador plan show
  apontador run`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("APONTADOR_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("APONTADOR_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("APONTADOR_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("APONTADOR_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "backend-url",
				Usage:       "automation backend base URL (overrides backend.url)",
				Sources:     cli.EnvVars("APONTADOR_BACKEND_URL"),
				Destination: &flags.BackendURL,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.BackendURL != "" {
				cfg.Backend.URL = flags.BackendURL
			}
			flags.Config = cfg

			// Validation ensures the theme name is known.
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			p := printer.New(c.Root().ErrWriter)
			ctx = printer.NewContext(ctx, p)

			client, err := backend.New(backendOptions(cfg))
			if err != nil {
				return ctx, fmt.Errorf("backend: %w", err)
			}

			bus = eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			busCtx, cancel := context.WithCancel(context.Background())
			stopBus = cancel
			go bus.Start(busCtx)

			var (
				sessionStore  = jsonfile.NewSessionStore(cfg.SessionFile())
				activityStore = jsonfile.NewActivityStore(cfg.ActivityFile())
				catalogCache  = catalog.New(diskv.New(cfg.CacheDir()))
			)

			history, err := activityStore.List(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to read activity history")
			}

			activityLog := activity.NewLog(cfg.ActivityLimit(),
				activity.WithHistory(history),
				activity.WithRecorder(activityStore),
				activity.WithLogger(logging.Component("activity")),
				activity.WithListener(func(e activity.Entry) {
					p.Entry(e)
					bus.PublishActivityAppended(eventbus.ActivityAppendedPayload{Entry: e})
				}),
			)

			orchestrator := apontador.NewOrchestrator(
				client,
				sessionStore,
				catalogCache,
				activityLog,
				bus,
				logging.Component("orchestrator"),
			)
			if err := orchestrator.Open(ctx); err != nil {
				return ctx, fmt.Errorf("open workspace: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*apApp = *apontador.NewApp(orchestrator, cfg, bus, activityStore, client.BaseURL())

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if bus != nil {
				bus.Close()
			}
			if stopBus != nil {
				stopBus()
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewCredentialsCmd(flags, apApp).Register(app)
	app = commands.NewTasksCmd(flags, apApp).Register(app)
	app = commands.NewMonthCmd(flags, apApp).Register(app)
	app = commands.NewModeCmd(flags, apApp).Register(app)
	app = commands.NewPeriodCmd(flags, apApp).Register(app)
	app = commands.NewPlanCmd(flags, apApp).Register(app)
	app = commands.NewRunCmd(flags, apApp).Register(app)
	app = commands.NewStatusCmd(flags, apApp).Register(app)
	app = commands.NewLogCmd(flags, apApp).Register(app)
	app = commands.NewDoctorCmd(flags, apApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

func backendOptions(cfg *config.Config) backend.Options {
	r := cfg.Backend.Routes
	return backend.Options{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout,
		HealthTimeout: cfg.Backend.HealthTimeout,
		Routes: backend.Routes{
			SaveCredentials:  r.SaveCredentials,
			LoadCredentials:  r.LoadCredentials,
			LoadTasks:        r.LoadTasks,
			Execute:          r.Execute,
			AutomationStatus: r.AutomationStatus,
			Health:           r.Health,
		},
		Logger: logging.Component("backend"),
	}
}
