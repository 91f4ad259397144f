package doctor

import (
	"context"

	"github.com/marcelomcd/apontador/internal/backend"
)

// CredentialsSource reports whether the backend holds portal credentials.
type CredentialsSource interface {
	LoadCredentials(ctx context.Context) (backend.CredentialStatus, error)
}

// CredentialsCheck verifies that credentials were stored.
type CredentialsCheck struct {
	source CredentialsSource
}

// NewCredentialsCheck creates a new credentials check.
func NewCredentialsCheck(source CredentialsSource) *CredentialsCheck {
	return &CredentialsCheck{source: source}
}

func (c *CredentialsCheck) Name() string {
	return "Credentials"
}

func (c *CredentialsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	st, err := c.source.LoadCredentials(ctx)
	switch {
	case backend.IsUnavailable(err):
		result.Items = append(result.Items, item("credentials", StatusWarn, "skipped: backend unavailable"))
	case err != nil:
		result.Items = append(result.Items, item("credentials", StatusFail, backend.Message(err)))
	case !st.HasCredentials:
		result.Items = append(result.Items, item("credentials", StatusFail, "not stored, run 'apontador credentials set'"))
	default:
		result.Items = append(result.Items, item("credentials", StatusPass, st.Email))
	}

	return result
}
