package apontador

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcelomcd/apontador/internal/backend"
	"github.com/marcelomcd/apontador/internal/core/automation"
	"github.com/marcelomcd/apontador/internal/core/logging"
	"github.com/marcelomcd/apontador/internal/core/request"
)

// Result describes one Execute call.
type Result struct {
	Seq      uint64
	Outcome  automation.Outcome
	Request  request.Request
	Response backend.ExecutionResult
	// Err is the validation or backend error, nil for succeeded and
	// partially failed attempts.
	Err error
	// Stale is set when a newer call took over the loading flag while this
	// attempt was in flight; the executor state was left to that call.
	Stale bool
}

// Execute builds the request from the current plan and submits it once.
// Every path appends exactly one result entry to the activity log: the
// validation error, the success count, the joined partial failures or the
// classified backend error.
func (o *Orchestrator) Execute(ctx context.Context, headless bool) Result {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	in := cloneState(o.state).Input(o.catalog, headless)
	o.mu.Unlock()

	ctx = logging.WithSequence(logging.WithOperation(ctx, "execute"), seq)

	req, err := request.Build(in)
	if err != nil {
		o.log.Error(ctx, err.Error())
		return Result{Seq: seq, Outcome: automation.OutcomeRejected, Err: err}
	}

	if in.UsesPlaceholderTask() {
		first, _ := in.Catalog.At(0)
		o.log.Info(ctx, "no task chosen for the full month, using the first task: "+first.Label())
	}

	o.begin(seq)
	o.log.Info(ctx, "starting automation")

	resp, err := o.backend.Execute(ctx, req)
	res := Result{Seq: seq, Request: req, Response: resp, Err: err}

	switch {
	case err != nil:
		res.Outcome = automation.OutcomeFailed
		o.log.Error(ctx, "automation failed: "+backend.Message(err))
	case resp.Success:
		res.Outcome = automation.OutcomeSucceeded
		o.log.Success(ctx, fmt.Sprintf("automation finished: %d entries filled", resp.TotalEntries))
	default:
		res.Outcome = automation.OutcomePartiallyFailed
		o.log.Error(ctx, partialMessage(resp))
	}

	res.Stale = !o.finish(seq, res.Outcome)
	if res.Stale {
		o.logger.Debug().Ctx(ctx).Str("outcome", string(res.Outcome)).Msg("newer call owns the executor state")
	}
	return res
}

// begin moves the executor to submitting on behalf of seq. A call issued
// after seq that already took over keeps its ownership.
func (o *Orchestrator) begin(seq uint64) {
	o.mu.Lock()
	from := o.exec.Phase
	if seq > o.loadingOwner {
		o.loadingOwner = seq
		o.exec.Loading = true
		o.exec.Seq = seq
	}
	owner := seq > o.execSeq
	if owner {
		o.execSeq = seq
		o.exec.Phase = automation.PhaseSubmitting
		o.exec.Progress = automation.ProgressStarted
	}
	o.mu.Unlock()

	if owner {
		o.publishPhase(seq, from, automation.PhaseSubmitting, automation.ProgressStarted)
	}
}

// finish records the outcome. The loading flag is only cleared when seq
// still owns it; phase and progress follow the latest submitted attempt.
// It reports whether seq owned the loading flag.
func (o *Orchestrator) finish(seq uint64, outcome automation.Outcome) bool {
	o.mu.Lock()
	owner := o.release(seq)
	from := o.exec.Phase
	phaseOwner := o.execSeq == seq
	if phaseOwner {
		o.exec.Phase = automation.PhaseIdle
		o.exec.Progress = automation.ProgressFinished
	}
	progress := o.exec.Progress
	o.mu.Unlock()

	if phaseOwner {
		terminal := outcome.Phase()
		o.publishPhase(seq, from, terminal, progress)
		o.publishPhase(seq, terminal, automation.PhaseIdle, progress)
	}
	return owner
}

func partialMessage(resp backend.ExecutionResult) string {
	if len(resp.Errors) == 0 {
		return "automation finished with errors: the backend reported a failure without details"
	}
	return "automation finished with errors: " + strings.Join(resp.Errors, ", ")
}
