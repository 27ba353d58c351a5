// Package pipeline sequences the solver and validation stages and owns the run state machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/plancheck/pkg/adapters/memory"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
	"github.com/aretw0/plancheck/pkg/solver"
	"github.com/aretw0/plancheck/pkg/workspace"
	"github.com/google/uuid"
)

// Status lines printed to the operator.
const (
	MsgValid       = "Plan is VALID."
	MsgInvalid     = "Plan INVALID."
	MsgSolveFailed = "Solver failed or timed-out."
)

// DefaultLockTTL bounds how long a crashed run can keep a remote workspace lock.
const DefaultLockTTL = 5 * time.Minute

// Solver is the solver stage as seen by the pipeline.
type Solver interface {
	Solve(ctx context.Context, domainPath, problemPath string) (solver.Result, error)
}

// Validator is the validation stage as seen by the pipeline.
type Validator interface {
	Validate(ctx context.Context, domainPath, problemPath, planPath string) (domain.ValidationOutcome, error)
}

// StatusSink receives human-readable outcome lines.
type StatusSink interface {
	Status(state domain.State, message string)
}

// Orchestrator runs one domain/problem pair through solve and validate.
type Orchestrator struct {
	solver    Solver
	validator Validator
	workspace *workspace.Workspace

	locker  ports.Locker
	lockTTL time.Duration
	store   ports.ReportStore
	status  StatusSink
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithLocker sets the workspace lock. Defaults to an in-process lock.
func WithLocker(l ports.Locker, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.locker = l
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

// WithStore sets where run reports are saved. Reports are not persisted without one.
func WithStore(s ports.ReportStore) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithStatusSink sets the receiver of the outcome lines.
func WithStatusSink(s StatusSink) Option {
	return func(o *Orchestrator) {
		o.status = s
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = o.hooks.Merge(h)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithIDGenerator overrides how run IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// New creates an orchestrator over the given stages and workspace.
func New(s Solver, v Validator, ws *workspace.Workspace, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		solver:    s,
		validator: v,
		workspace: ws,
		locker:    memory.NewLocker(),
		lockTTL:   DefaultLockTTL,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run carries the mutable state of one Run call.
type run struct {
	ctx    context.Context
	report domain.RunReport
}

// Run executes the pipeline. The returned report is always populated and its
// ExitCode is the process exit code. The error is non-nil only for infrastructure
// failures: lock acquisition, context cancellation or workspace IO.
func (o *Orchestrator) Run(ctx context.Context, domainPath, problemPath string) (domain.RunReport, error) {
	r := &run{
		ctx: ctx,
		report: domain.RunReport{
			ID:        o.newID(),
			Domain:    domainPath,
			Problem:   problemPath,
			State:     domain.StateInit,
			StartedAt: o.now(),
		},
	}
	logger := o.logger.With("run_id", r.report.ID)

	unlock, err := o.locker.Lock(ctx, o.workspace.Dir(), o.lockTTL)
	if err != nil {
		r.report.ExitCode = domain.ExitCode(r.report.State)
		r.report.FinishedAt = o.now()
		return r.report, fmt.Errorf("workspace %s: %w", o.workspace.Dir(), err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release workspace lock", "err", err)
		}
	}()

	runErr := o.execute(r, logger, domainPath, problemPath)
	o.finish(r, logger)
	return r.report, runErr
}

func (o *Orchestrator) execute(r *run, logger *slog.Logger, domainPath, problemPath string) error {
	if err := o.transition(r, domain.StateSolving); err != nil {
		return err
	}

	res, err := o.solver.Solve(r.ctx, domainPath, problemPath)
	r.report.SolverLog = res.Execution.Log
	r.report.TimedOut = res.Execution.TimedOut
	if err != nil {
		r.report.SolveFailure = err.Error()
		if terr := o.transition(r, domain.StateSolveFailed); terr != nil {
			return terr
		}
		switch {
		case errors.Is(err, domain.ErrToolMissing):
			o.say(domain.StateSolveFailed, err.Error())
			return nil
		case errors.Is(err, domain.ErrSolveFailed):
			o.say(domain.StateSolveFailed, MsgSolveFailed)
			return nil
		}
		logger.Error("solver stage aborted", "err", err)
		return err
	}

	r.report.Plan = res.Plan
	if err := o.transition(r, domain.StatePlanProduced); err != nil {
		return err
	}
	if err := o.transition(r, domain.StateValidating); err != nil {
		return err
	}

	var outcome domain.ValidationOutcome
	err = o.workspace.WithPlanFile(res.Plan, func(path string) error {
		var verr error
		outcome, verr = o.validator.Validate(r.ctx, domainPath, problemPath, path)
		return verr
	})
	r.report.ValidatorLog = outcome.Log
	if err != nil {
		logger.Error("validation stage aborted", "err", err)
		return err
	}

	r.report.Valid = outcome.Valid
	if outcome.Valid {
		if err := o.transition(r, domain.StateValid); err != nil {
			return err
		}
		o.say(domain.StateValid, MsgValid)
		return nil
	}
	if err := o.transition(r, domain.StateInvalid); err != nil {
		return err
	}
	o.say(domain.StateInvalid, MsgInvalid)
	return nil
}

// finish stamps the exit code, persists the report and emits the final transition.
// The report keeps the outcome state; done is only announced to hooks.
func (o *Orchestrator) finish(r *run, logger *slog.Logger) {
	r.report.ExitCode = domain.ExitCode(r.report.State)
	r.report.FinishedAt = o.now()

	if o.store != nil {
		if err := o.store.Save(context.WithoutCancel(r.ctx), r.report); err != nil {
			logger.Warn("failed to save run report", "err", err)
		}
	}

	if r.report.State.Terminal() {
		o.emit(r, r.report.State, domain.StateDone)
	}
	logger.Info("run finished", "state", r.report.State, "exit_code", r.report.ExitCode, "duration", r.report.Duration())
}

func (o *Orchestrator) transition(r *run, to domain.State) error {
	from := r.report.State
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	r.report.State = to
	o.emit(r, from, to)
	return nil
}

func (o *Orchestrator) emit(r *run, from, to domain.State) {
	if o.hooks.OnStateChange == nil {
		return
	}
	o.hooks.OnStateChange(r.ctx, &domain.StateEvent{
		EventBase: domain.EventBase{Timestamp: o.now(), Type: domain.EventStateChange, RunID: r.report.ID},
		From:      from,
		To:        to,
	})
}

func (o *Orchestrator) say(state domain.State, msg string) {
	if o.status != nil {
		o.status.Status(state, msg)
	}
}
