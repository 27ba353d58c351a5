// Package solver runs the external planner and recovers the plan it leaves behind.
package solver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/plancheck/pkg/adapters/process"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
	"github.com/aretw0/plancheck/pkg/workspace"
)

// DefaultTimeLimit bounds a solver run.
const DefaultTimeLimit = 5 * time.Second

// DefaultTool runs the dual-bfws-ffparser planner through the planutils front-end.
func DefaultTool() process.Tool {
	return process.Tool{
		Command:   "planutils",
		Args:      []string{"run", "dual-bfws-ffparser", "{domain}", "{problem}"},
		TimeLimit: DefaultTimeLimit,
	}
}

// Stage runs the solver inside a workspace.
type Stage struct {
	runner    ports.ProcessRunner
	workspace *workspace.Workspace
	tool      process.Tool
	lookPath  ports.ToolResolver
	logger    *slog.Logger
}

// Option configures the stage.
type Option func(*Stage)

// WithTool overrides the solver command line.
func WithTool(tool process.Tool) Option {
	return func(s *Stage) {
		s.tool = tool
	}
}

// WithToolResolver overrides how the front-end command is looked up.
func WithToolResolver(resolve ports.ToolResolver) Option {
	return func(s *Stage) {
		s.lookPath = resolve
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		s.logger = logger
	}
}

// New creates a solver stage.
func New(runner ports.ProcessRunner, ws *workspace.Workspace, opts ...Option) *Stage {
	s := &Stage{
		runner:    runner,
		workspace: ws,
		tool:      DefaultTool(),
		lookPath:  process.LookPath,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is what a solver run leaves behind besides the plan.
type Result struct {
	Plan      domain.Plan
	Execution domain.ExecutionResult
}

// Solve runs the solver on the domain/problem pair and returns the recovered plan.
//
// It fails with domain.ErrToolMissing, without spawning anything, when the front-end
// is not on PATH, and with a *domain.SolveError when no non-empty artifact exists
// once the solver has terminated.
func (s *Stage) Solve(ctx context.Context, domainPath, problemPath string) (Result, error) {
	if _, err := s.lookPath(s.tool.Command); err != nil {
		return Result{}, err
	}

	// The solver runs inside the workspace, so relative inputs must be anchored first.
	absDomain, err := filepath.Abs(domainPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve domain path: %w", err)
	}
	absProblem, err := filepath.Abs(problemPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve problem path: %w", err)
	}

	if err := s.workspace.ClearArtifact(); err != nil {
		return Result{}, err
	}

	inv := s.tool.Invocation("solver", s.workspace.Dir(), map[string]string{
		"domain":  absDomain,
		"problem": absProblem,
	})

	execRes, runErr := s.runner.Run(ctx, inv)
	if runErr != nil {
		s.logger.Warn("solver run returned error", "err", runErr)
	}

	// The artifact is inspected whatever happened to the run.
	plan, ok, err := s.workspace.RecoverPlan()
	if err != nil {
		return Result{Execution: execRes}, err
	}
	if ctx.Err() != nil {
		return Result{Execution: execRes}, ctx.Err()
	}
	if !ok {
		reason := domain.ReasonNoPlan
		if execRes.TimedOut {
			reason = domain.ReasonTimeout
		}
		s.logger.Info("solver produced no plan", "reason", reason, "exit_code", execRes.ExitCode)
		return Result{Execution: execRes}, &domain.SolveError{Reason: reason, Log: execRes.Log}
	}

	s.logger.Info("plan recovered", "actions", len(plan.Lines()), "duration", execRes.Duration)
	return Result{Plan: plan, Execution: execRes}, nil
}
