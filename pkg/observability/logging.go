package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/plancheck/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and escalations at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateChange: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state change", "run_id", e.RunID, "from", e.From, "to", e.To)
		},
		OnProcessStart: func(ctx context.Context, e *domain.ProcessEvent) {
			logger.DebugContext(ctx, "process started", "label", e.Label, "command", e.Command, "pid", e.PID)
		},
		OnProcessExit: func(ctx context.Context, e *domain.ProcessEvent) {
			logger.DebugContext(ctx, "process exited",
				"label", e.Label,
				"pid", e.PID,
				"exit_code", e.ExitCode,
				"timed_out", e.TimedOut,
				"duration", e.Duration,
			)
		},
		OnTerminate: func(ctx context.Context, e *domain.SignalEvent) {
			if e.Escalate {
				logger.WarnContext(ctx, "process group ignored graceful signal, killing", "label", e.Label, "pid", e.PID)
				return
			}
			logger.DebugContext(ctx, "terminating process group", "label", e.Label, "pid", e.PID)
		},
	}
}
