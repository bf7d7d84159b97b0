package loop

import (
	"errors"
	"time"

	"github.com/Cyclone1070/vics/internal/provider"
)

// ErrIterationLimitExceeded is the error of a session aborted by the iteration bound.
var ErrIterationLimitExceeded = errors.New("iteration limit exceeded")

// State is the position of a session in its state machine.
type State string

const (
	StateAwaitingModel  State = "awaiting_model"
	StateExecutingTools State = "executing_tools"
	StateFinished       State = "finished"
	StateAborted        State = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted
}

// Reason explains why a session was aborted.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonIterationLimitExceeded Reason = "iteration_limit_exceeded"
	ReasonProviderError          Reason = "provider_error"
	ReasonCancelled              Reason = "cancelled"
)

// FinalReport is the outcome of one run. Aborted runs keep the full transcript
// and end it with a notice explaining the stop.
type FinalReport struct {
	SessionID string
	Task      string

	// Text is the model's final answer, or the abort notice.
	Text       string
	Transcript []provider.Message

	State      State
	Reason     Reason
	Err        error
	Iterations int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the model produced a final answer.
func (r FinalReport) Succeeded() bool {
	return r.State == StateFinished
}
