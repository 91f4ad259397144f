// Package automation describes the lifecycle of one submission to the
// automation backend.
package automation

// Phase is the state of the executor.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseSubmitting      Phase = "submitting"
	PhaseSucceeded       Phase = "succeeded"
	PhasePartiallyFailed Phase = "partially-failed"
	PhaseFailed          Phase = "failed"
)

// Terminal reports whether the phase ends an attempt.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhasePartiallyFailed, PhaseFailed:
		return true
	default:
		return false
	}
}

// Outcome classifies the result of one Execute call.
type Outcome string

const (
	// OutcomeRejected means local validation failed and nothing was sent.
	OutcomeRejected        Outcome = "rejected"
	OutcomeSucceeded       Outcome = "succeeded"
	OutcomePartiallyFailed Outcome = "partially-failed"
	OutcomeFailed          Outcome = "failed"
)

// Phase returns the terminal phase an outcome leaves the executor in before
// it returns to idle. Rejected attempts never leave idle.
func (o Outcome) Phase() Phase {
	switch o {
	case OutcomeSucceeded:
		return PhaseSucceeded
	case OutcomePartiallyFailed:
		return PhasePartiallyFailed
	case OutcomeFailed:
		return PhaseFailed
	default:
		return PhaseIdle
	}
}

// Progress markers. 100 means the attempt finished, not that it succeeded.
const (
	ProgressStarted  = 0
	ProgressFinished = 100
)

// State is the in-flight view of the executor.
type State struct {
	Phase    Phase  `json:"phase"`
	Loading  bool   `json:"loading"`
	Progress int    `json:"progress"`
	Seq      uint64 `json:"seq,omitempty"`
}
