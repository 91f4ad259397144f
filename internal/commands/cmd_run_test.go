package commands

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_Succeeded(t *testing.T) {
	env := newTestEnv(t)
	env.loadTasks()
	_, err := env.app.Orchestrator.SetFullMonthTask(t.Context(), "3")
	require.NoError(t, err)

	require.NoError(t, env.run(NewRunCmd(env.flags, env.app), "run"))

	executed := env.backend.executedRequests()
	require.Len(t, executed, 1)
	req := executed[0]
	require.Len(t, req.Periods, 1)
	assert.Equal(t, 2, req.Periods[0].TaskIndex)
	assert.True(t, req.Headless)

	last := env.lastEntry()
	assert.Equal(t, activity.SeveritySuccess, last.Severity)
	assert.Equal(t, "automation finished: 42 entries filled", last.Message)
	assert.Equal(t, automation.PhaseIdle, env.app.Orchestrator.ExecState().Phase)
}

func TestRunCmd_HeadlessOverride(t *testing.T) {
	env := newTestEnv(t)
	env.loadTasks()

	require.NoError(t, env.run(NewRunCmd(env.flags, env.app), "run", "--headless=false"))

	executed := env.backend.executedRequests()
	require.Len(t, executed, 1)
	assert.False(t, executed[0].Headless)
}

func TestRunCmd_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(env *testEnv)
		wantCode int
		wantSent int
		wantMsg  string
	}{
		{
			name:     "rejected locally",
			setup:    func(env *testEnv) {},
			wantCode: ExitFailed,
			wantSent: 0,
			wantMsg:  "no tasks loaded",
		},
		{
			name: "partially failed",
			setup: func(env *testEnv) {
				env.loadTasks()
				env.backend.update(func(f *fakeBackend) {
					f.execResult = backend.ExecutionResult{
						Success:      false,
						TotalEntries: 40,
						Errors:       []string{"05/02/2024 morning", "06/02/2024 afternoon"},
					}
				})
			},
			wantCode: ExitPartial,
			wantSent: 1,
			wantMsg:  "automation finished with errors: 05/02/2024 morning, 06/02/2024 afternoon",
		},
		{
			name: "backend error",
			setup: func(env *testEnv) {
				env.loadTasks()
				env.backend.update(func(f *fakeBackend) { f.execStatus = http.StatusInternalServerError })
			},
			wantCode: ExitFailed,
			wantSent: 1,
			wantMsg:  "browser crashed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(env)

			err := env.run(NewRunCmd(env.flags, env.app), "run")

			assert.Equal(t, tt.wantCode, exitCodeOf(err))
			assert.Len(t, env.backend.executedRequests(), tt.wantSent)

			last := env.lastEntry()
			assert.Equal(t, activity.SeverityError, last.Severity)
			assert.Contains(t, last.Message, tt.wantMsg)
			assert.Equal(t, automation.PhaseIdle, env.app.Orchestrator.ExecState().Phase)
		})
	}
}

func TestRunCmd_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.loadTasks()

	require.NoError(t, env.run(NewRunCmd(env.flags, env.app), "run", "--json"))

	var out struct {
		Outcome  automation.Outcome       `json:"outcome"`
		Response *backend.ExecutionResult `json:"response"`
		Error    string                   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.stdout), &out))
	assert.Equal(t, automation.OutcomeSucceeded, out.Outcome)
	require.NotNil(t, out.Response)
	assert.Equal(t, 42, out.Response.TotalEntries)
	assert.Empty(t, out.Error)
}

func TestRunCmd_JSONRejected(t *testing.T) {
	env := newTestEnv(t)

	err := env.run(NewRunCmd(env.flags, env.app), "run", "--json")
	assert.Equal(t, ExitFailed, exitCodeOf(err))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.stdout), &out))
	assert.Equal(t, "rejected", out["outcome"])
	assert.NotContains(t, out, "request")
	assert.NotContains(t, out, "response")
	assert.Contains(t, out["error"], "no tasks loaded")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(automation.OutcomeSucceeded))
	assert.Equal(t, ExitPartial, exitCode(automation.OutcomePartiallyFailed))
	assert.Equal(t, ExitFailed, exitCode(automation.OutcomeFailed))
	assert.Equal(t, ExitFailed, exitCode(automation.OutcomeRejected))
}
