package domain

// State is a step of the pipeline state machine.
type State string

const (
	StateInit         State = "init"
	StateSolving      State = "solving"
	StateSolveFailed  State = "solve_failed" // Terminal
	StatePlanProduced State = "plan_produced"
	StateValidating   State = "validating"
	StateValid        State = "valid"   // Terminal
	StateInvalid      State = "invalid" // Terminal
	StateDone         State = "done"
)

// Process exit codes of the plancheck CLI.
const (
	ExitValid       = 0
	ExitSolveFailed = 1
	ExitInvalid     = 2
)

// Terminal reports whether the state ends the pipeline.
func (s State) Terminal() bool {
	switch s {
	case StateSolveFailed, StateValid, StateInvalid, StateDone:
		return true
	}
	return false
}

// ExitCode maps a terminal state to the process exit code.
// Non-terminal states map to ExitSolveFailed: a run that stopped there did not
// produce a validated plan.
func ExitCode(s State) int {
	switch s {
	case StateValid:
		return ExitValid
	case StateInvalid:
		return ExitInvalid
	default:
		return ExitSolveFailed
	}
}

// CanTransition reports whether the state machine allows moving from one state to another.
func CanTransition(from, to State) bool {
	switch from {
	case StateInit:
		return to == StateSolving
	case StateSolving:
		return to == StateSolveFailed || to == StatePlanProduced
	case StatePlanProduced:
		return to == StateValidating
	case StateValidating:
		return to == StateValid || to == StateInvalid
	case StateSolveFailed, StateValid, StateInvalid:
		return to == StateDone
	}
	return false
}
