package domain

import (
	"errors"
	"fmt"
)

// ErrToolMissing is returned when a required external command is not on the search path.
var ErrToolMissing = errors.New("required tool not found")

// ErrSolveFailed is matched by every SolveError.
var ErrSolveFailed = errors.New("solver failed")

// ErrReportNotFound is returned when a run ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrLockAcquire is returned when the workspace lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire workspace lock")

// ErrInvalidTransition is returned when the pipeline attempts a transition the state machine forbids.
var ErrInvalidTransition = errors.New("invalid state transition")

// SolveReason classifies why the solver stage produced no plan.
type SolveReason string

const (
	// ReasonTimeout means the deadline elapsed and no artifact was left behind.
	ReasonTimeout SolveReason = "timeout"
	// ReasonNoPlan means the solver exited on its own without a usable artifact.
	ReasonNoPlan SolveReason = "no_plan"
)

// SolveError reports a solver run that yielded no usable plan.
// Both reasons are fatal for the run and map to the same exit code.
type SolveError struct {
	Reason SolveReason
	Log    string
}

func (e *SolveError) Error() string {
	if e.Reason == ReasonTimeout {
		return "solver timed out without producing a plan"
	}
	return "solver produced no plan"
}

// Is makes errors.Is(err, ErrSolveFailed) hold for any SolveError.
func (e *SolveError) Is(target error) bool {
	return target == ErrSolveFailed
}

// ToolMissingError wraps ErrToolMissing with the command name.
func ToolMissingError(name string) error {
	return fmt.Errorf("'%s' command not found; please install %s: %w", name, name, ErrToolMissing)
}
