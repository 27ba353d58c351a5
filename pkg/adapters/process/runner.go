package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/aretw0/plancheck/pkg/domain"
)

// DefaultGracePeriod is the wait between the graceful and the forceful signal.
const DefaultGracePeriod = 3 * time.Second

// LogSink receives the combined log of every finished invocation.
type LogSink interface {
	LogBlock(label, log string)
}

// Runner implements ports.ProcessRunner for local processes.
type Runner struct {
	grace  time.Duration
	sink   LogSink
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithGracePeriod sets the wait between the graceful and the forceful signal.
func WithGracePeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.grace = d
	}
}

// WithLogSink sets where combined logs are echoed once a process has finished.
func WithLogSink(sink LogSink) RunnerOption {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithHooks registers process lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) RunnerOption {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		grace:  DefaultGracePeriod,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GracePeriod returns the configured grace period.
func (r *Runner) GracePeriod() time.Duration {
	return r.grace
}

// Run spawns the invocation in a new process group and waits for it.
//
// If the time limit elapses, the group is terminated (graceful, then forceful after
// the grace period) and reaped; the captured output is returned with TimedOut set.
// A non-zero exit status is not an error: it is reported in ExitCode and the log.
// Errors are returned only when the process could not be started or ctx was canceled.
func (r *Runner) Run(ctx context.Context, inv domain.Invocation) (domain.ExecutionResult, error) {
	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	combined := &syncBuffer{}
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = io.MultiWriter(&stderr, combined)
	if r.grace > 0 {
		// Bounds the pipe drain when a descendant escaped the group and kept stdout open.
		cmd.WaitDelay = r.grace
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res := domain.ExecutionResult{
			Log:      err.Error(),
			ExitCode: -1,
		}
		r.echo(inv, res)
		return res, fmt.Errorf("failed to start %s: %w", inv.Command, err)
	}

	pid := cmd.Process.Pid
	r.logger.Debug("process started", "label", inv.Label, "command", inv.Command, "pid", pid)
	if r.hooks.OnProcessStart != nil {
		r.hooks.OnProcessStart(ctx, &domain.ProcessEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventProcessStart},
			Label:     inv.Label,
			Command:   inv.Command,
			PID:       pid,
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var deadline <-chan time.Time
	if inv.TimeLimit > 0 {
		timer := time.NewTimer(inv.TimeLimit)
		defer timer.Stop()
		deadline = timer.C
	}

	var (
		waitErr  error
		runErr   error
		timedOut bool
	)
	select {
	case waitErr = <-done:
	case <-deadline:
		timedOut = true
		r.logger.Info("time limit reached, terminating", "label", inv.Label, "limit", inv.TimeLimit)
		waitErr = r.stop(ctx, inv, cmd, done)
	case <-ctx.Done():
		runErr = ctx.Err()
		r.logger.Info("run canceled, terminating", "label", inv.Label, "err", runErr)
		waitErr = r.stop(ctx, inv, cmd, done)
	}

	res := domain.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Log:      combined.String(),
		TimedOut: timedOut,
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		r.logger.Debug("process wait returned error", "label", inv.Label, "err", waitErr)
	}

	if r.hooks.OnProcessExit != nil {
		r.hooks.OnProcessExit(ctx, &domain.ProcessEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventProcessExit},
			Label:     inv.Label,
			Command:   inv.Command,
			PID:       pid,
			ExitCode:  res.ExitCode,
			TimedOut:  res.TimedOut,
			Duration:  res.Duration,
		})
	}

	r.echo(inv, res)
	return res, runErr
}

// stop escalates termination of the process group and blocks until the leader is reaped.
// Group members that outlive the leader are killed once it is gone.
func (r *Runner) stop(ctx context.Context, inv domain.Invocation, cmd *exec.Cmd, done <-chan error) error {
	defer r.sweep(inv, cmd)

	r.signal(ctx, inv, cmd, false)

	if r.grace > 0 {
		grace := time.NewTimer(r.grace)
		defer grace.Stop()
		select {
		case err := <-done:
			return err
		case <-grace.C:
		}
	}

	r.signal(ctx, inv, cmd, true)
	return <-done
}

// sweep sends the forceful signal to whatever is left of the group. It is not an
// escalation of the run, so no OnTerminate hook fires.
func (r *Runner) sweep(inv domain.Invocation, cmd *exec.Cmd) {
	if err := terminate(cmd, true); err != nil {
		r.logger.Debug("group sweep failed", "label", inv.Label, "err", err)
	}
}

func (r *Runner) signal(ctx context.Context, inv domain.Invocation, cmd *exec.Cmd, escalate bool) {
	if r.hooks.OnTerminate != nil {
		r.hooks.OnTerminate(ctx, &domain.SignalEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTerminate},
			Label:     inv.Label,
			PID:       cmd.Process.Pid,
			Escalate:  escalate,
		})
	}
	if err := terminate(cmd, escalate); err != nil {
		r.logger.Warn("failed to signal process group", "label", inv.Label, "escalate", escalate, "err", err)
	}
}

func (r *Runner) echo(inv domain.Invocation, res domain.ExecutionResult) {
	if r.sink == nil {
		return
	}
	label := inv.Label
	if label == "" {
		label = inv.Command
	}
	r.sink.LogBlock(label, res.Log)
}

// syncBuffer interleaves stdout and stderr writes in arrival order.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
