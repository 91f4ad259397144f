package apontador

import (
	"context"
	"testing"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCredentials(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.o.SaveCredentials(context.Background(), " me@example.com ", "s3cret"))

	require.Len(t, h.be.saved, 1)
	assert.Equal(t, backend.Credentials{Email: "me@example.com", Password: "s3cret"}, h.be.saved[0])

	entries := h.log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, activity.SeveritySuccess, entries[0].Severity)
	assert.Equal(t, "credentials saved for me@example.com", entries[0].Message)
	assert.NotContains(t, entries[0].Message, "s3cret")
}

func TestSaveCredentials_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		save     func(context.Context, backend.Credentials) (backend.SaveResult, error)
		wantErr  error
		wantMsg  string
	}{
		{
			name:    "missing fields",
			email:   " ",
			wantMsg: "failed to save credentials: email and password are required",
		},
		{
			name:     "rejected",
			email:    "me@example.com",
			password: "x",
			save: func(context.Context, backend.Credentials) (backend.SaveResult, error) {
				return backend.SaveResult{Success: false, Message: "invalid email"}, nil
			},
			wantErr: ErrCredentialsRejected,
			wantMsg: "failed to save credentials: invalid email",
		},
		{
			name:     "unavailable",
			email:    "me@example.com",
			password: "x",
			save: func(context.Context, backend.Credentials) (backend.SaveResult, error) {
				return backend.SaveResult{}, unavailable
			},
			wantErr: backend.ErrUnavailable,
			wantMsg: "failed to save credentials: backend unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.be.save = tt.save

			err := h.o.SaveCredentials(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			entries := h.log.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, activity.SeverityError, entries[0].Severity)
			assert.Contains(t, entries[0].Message, tt.wantMsg)
		})
	}
}

func TestCredentials(t *testing.T) {
	h := newHarness(t)
	h.be.creds = func(context.Context) (backend.CredentialStatus, error) {
		return backend.CredentialStatus{HasCredentials: true, Email: "me@example.com"}, nil
	}

	st, err := h.o.Credentials(context.Background())
	require.NoError(t, err)
	assert.True(t, st.HasCredentials)
	assert.Zero(t, h.log.Len())

	h.be.creds = func(context.Context) (backend.CredentialStatus, error) {
		return backend.CredentialStatus{}, unavailable
	}
	_, err = h.o.Credentials(context.Background())
	require.ErrorIs(t, err, backend.ErrUnavailable)
	require.Len(t, bySeverity(h.log.Entries(), activity.SeverityError), 1)
}

func TestCheckBackend(t *testing.T) {
	h := newHarness(t)

	health, err := h.o.CheckBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, []string{"backend connected (version 1.2.0)"}, messages(h.log.Entries()))

	h.be.health = func(context.Context) (backend.Health, error) { return backend.Health{}, unavailable }
	_, err = h.o.CheckBackend(context.Background())
	require.True(t, backend.IsUnavailable(err))

	errs := bySeverity(h.log.Entries(), activity.SeverityError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "backend unavailable")
}
