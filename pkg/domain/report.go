package domain

import "time"

// RunReport is the persisted record of one pipeline run.
type RunReport struct {
	ID      string `json:"id"`
	Domain  string `json:"domain"`
	Problem string `json:"problem"`

	State    State `json:"state"`
	ExitCode int   `json:"exit_code"`

	Plan  Plan `json:"plan"`
	Valid bool `json:"valid"`

	// SolveFailure holds the failure message when the solver stage failed.
	SolveFailure string `json:"solve_failure,omitempty"`
	TimedOut     bool   `json:"timed_out,omitempty"`

	SolverLog    string `json:"solver_log,omitempty"`
	ValidatorLog string `json:"validator_log,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is the wall-clock time the run took.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
