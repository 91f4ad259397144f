package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable matches every *NetworkError.
var ErrUnavailable = errors.New("backend unavailable")

// NetworkError reports that the backend could not be reached or did not
// answer in time. The fix is on the infrastructure side, not in the input.
type NetworkError struct {
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unavailable: check that the automation service is running at %s", e.BaseURL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// ApplicationError is a structured failure returned by a reachable backend.
type ApplicationError struct {
	Status int
	Detail string
}

func (e *ApplicationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return "backend error: " + e.Detail
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Message renders err as a single line suitable for the activity log.
func Message(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return strings.TrimSpace(err.Error())
}
