package apontador

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/logging"
)

// ErrCredentialsRejected is returned when the backend answered but did not
// store the credentials.
var ErrCredentialsRejected = errors.New("credentials not saved")

// SaveCredentials stores the portal credentials on the backend. The password
// never reaches the activity log or the structured logger.
func (o *Orchestrator) SaveCredentials(ctx context.Context, email, password string) error {
	ctx = logging.WithOperation(ctx, "save-credentials")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := errors.New("email and password are required")
		o.log.Error(ctx, "failed to save credentials: "+err.Error())
		return err
	}

	res, err := o.backend.SaveCredentials(ctx, backend.Credentials{Email: email, Password: password})
	if err != nil {
		o.log.Error(ctx, "failed to save credentials: "+backend.Message(err))
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "rejected by backend"
		}
		o.log.Error(ctx, "failed to save credentials: "+msg)
		return fmt.Errorf("%w: %s", ErrCredentialsRejected, msg)
	}

	o.log.Success(ctx, "credentials saved for "+email)
	return nil
}

// Credentials reports whether the backend holds credentials.
func (o *Orchestrator) Credentials(ctx context.Context) (backend.CredentialStatus, error) {
	ctx = logging.WithOperation(ctx, "load-credentials")

	st, err := o.backend.LoadCredentials(ctx)
	if err != nil {
		o.log.Error(ctx, "failed to load credentials: "+backend.Message(err))
		return backend.CredentialStatus{}, err
	}
	return st, nil
}

// CheckBackend probes the backend health endpoint. Unavailability is logged
// as its own condition, distinct from an application error.
func (o *Orchestrator) CheckBackend(ctx context.Context) (backend.Health, error) {
	ctx = logging.WithOperation(ctx, "health")

	h, err := o.backend.Health(ctx)
	if err != nil {
		o.log.Error(ctx, backend.Message(err))
		return backend.Health{}, err
	}

	msg := "backend connected"
	if h.Version != "" {
		msg += " (version " + h.Version + ")"
	}
	o.log.Info(ctx, msg)
	return h, nil
}

// AutomationStatus returns the backend's browser automation state.
func (o *Orchestrator) AutomationStatus(ctx context.Context) (backend.AutomationStatus, error) {
	return o.backend.Status(logging.WithOperation(ctx, "automation-status"))
}
