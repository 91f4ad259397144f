package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/core/styles"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// CredentialsCmd implements the apontador credentials command group.
type CredentialsCmd struct {
	flags *Flags
	app   *apontador.App

	email         string
	passwordStdin bool

	// stdin is swapped in tests.
	stdin io.Reader
}

// NewCredentialsCmd creates a new credentials command.
func NewCredentialsCmd(flags *Flags, app *apontador.App) *CredentialsCmd {
	return &CredentialsCmd{flags: flags, app: app, stdin: os.Stdin}
}

// Register adds the credentials command to the application.
func (cmd *CredentialsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "credentials",
		Usage: "Manage the portal login stored by the backend",
		Description: `The backend stores the portal credentials encrypted; apontador never keeps
the password locally.

Examples:
  apontador credentials set                                   # interactive form
  echo "$PASS" | apontador credentials set --email me@corp.com --password-stdin
  apontador credentials show`,
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Save the portal email and password",
				UsageText: "apontador credentials set [--email <email>] [--password-stdin]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "email",
						Aliases:     []string{"e"},
						Usage:       "portal login email",
						Destination: &cmd.email,
					},
					&cli.BoolFlag{
						Name:        "password-stdin",
						Usage:       "read the password from stdin",
						Destination: &cmd.passwordStdin,
					},
				},
				Action: cmd.runSet,
			},
			{
				Name:   "show",
				Usage:  "Show whether credentials are stored",
				Action: cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *CredentialsCmd) runSet(ctx context.Context, c *cli.Command) error {
	email := cmd.email
	var password string

	switch {
	case cmd.passwordStdin:
		if email == "" {
			return fmt.Errorf("--email is required with --password-stdin")
		}
		pw, err := readSecret(cmd.stdin)
		if err != nil {
			return err
		}
		password = pw
	case isTerminal(cmd.stdin):
		if err := cmd.runForm(&email, &password); err != nil {
			return err
		}
	default:
		return fmt.Errorf("stdin is not a terminal; use --email with --password-stdin")
	}

	if err := cmd.app.Orchestrator.SaveCredentials(ctx, email, password); err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *CredentialsCmd) runForm(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Description("Portal login").
				Validate(required("email")).
				Value(email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(required("password")).
				Value(password),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func (cmd *CredentialsCmd) runShow(ctx context.Context, c *cli.Command) error {
	st, err := cmd.app.Orchestrator.Credentials(ctx)
	if err != nil {
		return cli.Exit("", 1)
	}

	p := printer.Ctx(ctx)
	if !st.HasCredentials {
		p.Warnf("no credentials stored, run 'apontador credentials set'")
		return nil
	}
	p.Successf("credentials stored for %s", st.Email)
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// readSecret reads the first line of r, without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("read password: empty input")
	}
	return line, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
