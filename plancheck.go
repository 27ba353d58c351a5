package plancheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/plancheck/pkg/adapters/process"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/pipeline"
	"github.com/aretw0/plancheck/pkg/ports"
	"github.com/aretw0/plancheck/pkg/solver"
	"github.com/aretw0/plancheck/pkg/validation"
	"github.com/aretw0/plancheck/pkg/workspace"
)

// Checker solves and validates planning problems with external tools.
type Checker struct {
	pipeline  *pipeline.Orchestrator
	workspace *workspace.Workspace
}

type options struct {
	solverTool    process.Tool
	validatorTool process.Tool
	marker        string
	grace         time.Duration
	workspaceDir  string
	artifact      string
	resolver      ports.ToolResolver

	store   ports.ReportStore
	locker  ports.Locker
	lockTTL time.Duration
	logSink process.LogSink
	status  pipeline.StatusSink
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*options)

// WithSolver replaces the solver command line. Args may use {domain} and {problem}.
func WithSolver(tool process.Tool) Option {
	return func(o *options) {
		o.solverTool = tool
	}
}

// WithValidator replaces the validator command line. Args may use {domain}, {problem} and {plan}.
func WithValidator(tool process.Tool) Option {
	return func(o *options) {
		o.validatorTool = tool
	}
}

// WithMarker sets the text whose presence in the validator log means "valid".
func WithMarker(marker string) Option {
	return func(o *options) {
		o.marker = marker
	}
}

// WithTimeLimit overrides the solver deadline only.
func WithTimeLimit(d time.Duration) Option {
	return func(o *options) {
		o.solverTool.TimeLimit = d
	}
}

// WithGracePeriod sets how long a process group gets between SIGTERM and SIGKILL.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// WithWorkspace runs the solver in dir instead of a private temp directory.
func WithWorkspace(dir string) Option {
	return func(o *options) {
		o.workspaceDir = dir
	}
}

// WithArtifact sets the file name the solver writes its plan to.
func WithArtifact(name string) Option {
	return func(o *options) {
		o.artifact = name
	}
}

// WithToolResolver overrides the lookup that checks the solver front-end is installed.
func WithToolResolver(r ports.ToolResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithStore persists every run report.
func WithStore(s ports.ReportStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithLocker serializes runs sharing a workspace, e.g. across hosts with a redis locker.
func WithLocker(l ports.Locker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = l
		o.lockTTL = ttl
	}
}

// WithLogSink echoes each process log when it finishes.
func WithLogSink(s process.LogSink) Option {
	return func(o *options) {
		o.logSink = s
	}
}

// WithStatusSink receives the final status line.
func WithStatusSink(s pipeline.StatusSink) Option {
	return func(o *options) {
		o.status = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(h)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New assembles a Checker. Without WithWorkspace it owns a temp directory that
// Close removes.
func New(opts ...Option) (*Checker, error) {
	o := &options{
		solverTool:    solver.DefaultTool(),
		validatorTool: validation.DefaultTool(),
		marker:        validation.DefaultMarker,
		grace:         process.DefaultGracePeriod,
		artifact:      workspace.DefaultArtifact,
		resolver:      process.LookPath,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	wsOpts := []workspace.Option{workspace.WithArtifact(o.artifact)}
	var (
		ws  *workspace.Workspace
		err error
	)
	if o.workspaceDir != "" {
		ws, err = workspace.New(o.workspaceDir, wsOpts...)
	} else {
		ws, err = workspace.NewTemp("plancheck-*", wsOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}

	runnerOpts := []process.RunnerOption{
		process.WithGracePeriod(o.grace),
		process.WithHooks(o.hooks),
		process.WithLogger(o.logger),
	}
	if o.logSink != nil {
		runnerOpts = append(runnerOpts, process.WithLogSink(o.logSink))
	}
	runner := process.NewRunner(runnerOpts...)

	solveStage := solver.New(runner, ws,
		solver.WithTool(o.solverTool),
		solver.WithToolResolver(o.resolver),
		solver.WithLogger(o.logger.With("stage", "solver")),
	)
	validateStage := validation.New(runner,
		validation.WithTool(o.validatorTool),
		validation.WithMarker(o.marker),
		validation.WithDir(ws.Dir()),
		validation.WithLogger(o.logger.With("stage", "validator")),
	)

	pipeOpts := []pipeline.Option{
		pipeline.WithHooks(o.hooks),
		pipeline.WithLogger(o.logger),
	}
	if o.store != nil {
		pipeOpts = append(pipeOpts, pipeline.WithStore(o.store))
	}
	if o.locker != nil {
		pipeOpts = append(pipeOpts, pipeline.WithLocker(o.locker, o.lockTTL))
	}
	if o.status != nil {
		pipeOpts = append(pipeOpts, pipeline.WithStatusSink(o.status))
	}

	return &Checker{
		pipeline:  pipeline.New(solveStage, validateStage, ws, pipeOpts...),
		workspace: ws,
	}, nil
}

// Check solves problemPath against domainPath and validates the resulting plan.
// report.ExitCode is 0 (valid), 1 (no plan) or 2 (invalid plan).
func (c *Checker) Check(ctx context.Context, domainPath, problemPath string) (domain.RunReport, error) {
	return c.pipeline.Run(ctx, domainPath, problemPath)
}

// Workspace returns the directory the solver runs in.
func (c *Checker) Workspace() string {
	return c.workspace.Dir()
}

// Close releases the workspace.
func (c *Checker) Close() error {
	return c.workspace.Close()
}
