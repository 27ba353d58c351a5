package ports

import (
	"context"

	"github.com/aretw0/plancheck/pkg/domain"
)

// ProcessRunner executes external commands.
type ProcessRunner interface {
	// Run spawns the invocation and blocks until the process has exited and been reaped.
	// When the deadline elapses, the returned result has TimedOut set and a nil error.
	Run(ctx context.Context, inv domain.Invocation) (domain.ExecutionResult, error)
}

// ToolResolver resolves a command name on the execution environment's search path.
type ToolResolver func(name string) (string, error)
