package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/marcelomcd/apontador/internal/apontador"
	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/config"
	"github.com/marcelomcd/apontador/internal/core/kv"
	"github.com/marcelomcd/apontador/internal/core/request"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/printer"
	"github.com/marcelomcd/apontador/internal/store/catalog"
	"github.com/marcelomcd/apontador/internal/store/jsonfile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

var fixtureTasks = []task.Task{
	{Client: "Acme", Project: "Portal", Name: "Dev", HoursReleased: "100,0", HoursBooked: "90,0", Balance: "10,0"},
	{Client: "Acme", Project: "Portal", Name: "QA", HoursReleased: "20,0", HoursBooked: "20,0", Balance: "0,0"},
	{Client: "Globex", Project: "ERP", Name: "Support", HoursReleased: "8,0", HoursBooked: "3,5", Balance: "4,5"},
}

// fakeBackend serves the automation service routes from memory.
type fakeBackend struct {
	mu sync.Mutex

	down        bool
	tasks       []task.Task
	tasksStatus int
	creds       backend.CredentialStatus
	savedCreds  []backend.Credentials
	execResult  backend.ExecutionResult
	execStatus  int
	executed    []request.Request
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tasks:      fixtureTasks,
		execResult: backend.ExecutionResult{Success: true, TotalEntries: 42},
	}
}

// update mutates the fake under its lock.
func (f *fakeBackend) update(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) executedRequests() []request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request.Request(nil), f.executed...)
}

func (f *fakeBackend) savedCredentials() []backend.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Credentials(nil), f.savedCreds...)
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backend.Health{Status: "ok", Version: "1.2.0"})
	})
	mux.HandleFunc("GET /credentials", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.creds)
	})
	mux.HandleFunc("POST /credentials", func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)

		f.mu.Lock()
		f.savedCreds = append(f.savedCreds, creds)
		f.creds = backend.CredentialStatus{HasCredentials: true, Email: creds.Email}
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, backend.SaveResult{Success: true, Message: "saved"})
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.tasksStatus != 0 {
			writeJSON(w, f.tasksStatus, map[string]string{"detail": "portal login failed"})
			return
		}
		writeJSON(w, http.StatusOK, backend.TaskList{Tasks: f.tasks, Count: len(f.tasks)})
	})
	mux.HandleFunc("POST /automation", func(w http.ResponseWriter, r *http.Request) {
		var req request.Request
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.executed = append(f.executed, req)
		if f.execStatus != 0 {
			writeJSON(w, f.execStatus, map[string]string{"detail": "browser crashed"})
			return
		}
		writeJSON(w, http.StatusOK, f.execResult)
	})
	mux.HandleFunc("GET /automation/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backend.AutomationStatus{PlaywrightInitialized: true})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.down
		f.mu.Unlock()
		if down {
			// Drop the connection so the client sees a transport error.
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					_ = conn.Close()
					return
				}
			}
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type registrar interface {
	Register(app *cli.Command) *cli.Command
}

// testEnv wires a real App against a fake backend and a temp data dir.
type testEnv struct {
	t       *testing.T
	backend *fakeBackend
	flags   *Flags
	app     *apontador.App
	entries []activity.Entry

	stdout string
	stderr string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fb := newFakeBackend()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Backend.URL = srv.URL

	client, err := backend.New(backend.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	env := &testEnv{t: t, backend: fb}

	activityStore := jsonfile.NewActivityStore(cfg.ActivityFile())
	log := activity.NewLog(cfg.ActivityLimit(),
		activity.WithRecorder(activityStore),
		activity.WithListener(func(e activity.Entry) { env.entries = append(env.entries, e) }),
	)

	o := apontador.NewOrchestrator(
		client,
		jsonfile.NewSessionStore(cfg.SessionFile()),
		catalog.New(kv.NewMemory()),
		log,
		nil,
		zerolog.Nop(),
	)
	require.NoError(t, o.Open(context.Background()))

	env.app = apontador.NewApp(o, &cfg, nil, activityStore, srv.URL)
	env.flags = &Flags{DataDir: cfg.DataDir, BackendURL: srv.URL, Config: &cfg}
	return env
}

// run executes args against a fresh root command holding only cmd.
func (e *testEnv) run(cmd registrar, args ...string) error {
	e.t.Helper()

	var stdout, stderr bytes.Buffer
	app := &cli.Command{
		Name:           "apontador",
		Writer:         &stdout,
		ErrWriter:      &stderr,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	cmd.Register(app)

	ctx := printer.NewContext(context.Background(), printer.New(&stderr))
	err := app.Run(ctx, append([]string{"apontador"}, args...))

	e.stdout, e.stderr = stdout.String(), stderr.String()
	return err
}

// loadTasks loads the fixture tasks for 02/2024.
func (e *testEnv) loadTasks() {
	e.t.Helper()
	_, err := e.app.Orchestrator.LoadTasks(context.Background(), 2, 2024)
	require.NoError(e.t, err)
}

func (e *testEnv) lastEntry() activity.Entry {
	e.t.Helper()
	require.NotEmpty(e.t, e.entries)
	return e.entries[len(e.entries)-1]
}

// exitCodeOf returns the code carried by a cli.Exit error, 0 for nil.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
