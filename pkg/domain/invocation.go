package domain

import "time"

// Invocation describes one call to an external command.
// It is constructed per stage call and never modified afterwards.
type Invocation struct {
	// Label names the invocation in console banners and metrics (e.g. "solver").
	Label string

	Command string
	Args    []string

	// TimeLimit bounds the wall-clock run time. Zero disables the deadline.
	TimeLimit time.Duration

	// Dir is the working directory of the spawned process. Empty means inherit.
	Dir string
}

// ExecutionResult is the captured outcome of one Invocation.
type ExecutionResult struct {
	Stdout string
	Stderr string

	// Log holds stdout and stderr interleaved in arrival order.
	Log string

	// TimedOut reports that the deadline elapsed and the process group was terminated.
	TimedOut bool

	// ExitCode is the process exit status, or -1 when the process was killed by a
	// signal or never started.
	ExitCode int

	Duration time.Duration
}
