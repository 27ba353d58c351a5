package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/plancheck"
	"github.com/aretw0/plancheck/internal/config"
	"github.com/aretw0/plancheck/internal/presentation/tui"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/observability"
)

// CheckOptions holds everything the root command needs for one run.
type CheckOptions struct {
	Config      config.Config
	DomainPath  string
	ProblemPath string
	Console     *tui.Console
	// Stdout receives system messages for infrastructure failures.
	Stdout io.Writer
	Logger *slog.Logger
}

// RunCheck solves and validates one problem and returns the process exit code.
func RunCheck(ctx context.Context, opts CheckOptions) int {
	logger := opts.Logger
	b, err := openBackends(opts.Config)
	if err != nil {
		printSystemMessage(opts.Stdout, "%s", describe(err))
		return domain.ExitSolveFailed
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close backends", "err", err)
		}
	}()

	checkerOpts := append(checkerOptions(opts.Config, b, logger),
		plancheck.WithLogSink(opts.Console),
		plancheck.WithStatusSink(opts.Console),
		plancheck.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	checker, err := plancheck.New(checkerOpts...)
	if err != nil {
		printSystemMessage(opts.Stdout, "%s", describe(err))
		return domain.ExitSolveFailed
	}
	defer func() {
		if err := checker.Close(); err != nil {
			logger.Warn("failed to remove workspace", "err", err)
		}
	}()

	report, err := checker.Check(ctx, opts.DomainPath, opts.ProblemPath)
	if err != nil {
		if ctx.Err() != nil {
			printSystemMessage(opts.Stdout, "%s; solver and validator were stopped.", interruption(ctx))
		} else {
			printSystemMessage(opts.Stdout, "%s", describe(err))
		}
	}
	opts.Console.Summary(report)
	return ExitCode(report, err)
}
