package domain

import "strings"

// Plan is the ordered sequence of actions produced by the solver.
// The zero value is an absent plan.
type Plan struct {
	Text string `json:"text"`
}

// NewPlan wraps raw artifact text.
func NewPlan(text string) Plan {
	return Plan{Text: text}
}

// Empty reports whether the plan is absent.
func (p Plan) Empty() bool {
	return p.Text == ""
}

// Lines returns the non-blank action lines of the plan.
func (p Plan) Lines() []string {
	var lines []string
	for _, line := range strings.Split(p.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (p Plan) String() string {
	return p.Text
}

// ValidationOutcome is the verdict derived from a validator run.
type ValidationOutcome struct {
	Valid bool   `json:"valid"`
	Log   string `json:"log"`

	// ExitCode is recorded for operators. It does not decide validity.
	ExitCode int `json:"exit_code"`
}
