package backend

import "github.com/marcelomcd/apontador/internal/core/task"

// Credentials are the portal login forwarded to the backend, which stores
// them encrypted. The password never reaches the local workspace.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SaveResult acknowledges a credentials update.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CredentialStatus tells whether the backend holds credentials.
type CredentialStatus struct {
	HasCredentials bool   `json:"has_credentials"`
	Email          string `json:"email,omitempty"`
}

type loadTasksRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// TaskList is the task table extracted from the portal for one month.
type TaskList struct {
	Tasks []task.Task `json:"tasks"`
	Count int         `json:"count"`
}

// ExecutionResult aggregates the outcome of every submitted entry.
type ExecutionResult struct {
	Success      bool     `json:"success"`
	TotalEntries int      `json:"total_entries"`
	Errors       []string `json:"errors"`
	FilledDates  []string `json:"filled_dates,omitempty"`
}

// AutomationStatus describes the backend's browser automation.
type AutomationStatus struct {
	PlaywrightInitialized bool `json:"playwright_initialized"`
	BrowserOpen           bool `json:"browser_open"`
}

// Health is the liveness payload.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}
