// Package validation runs the external plan validator and interprets its log.
package validation

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/plancheck/pkg/adapters/process"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
)

// DefaultMarker is the text VAL prints when a plan checks out.
const DefaultMarker = "Plan valid"

// DefaultTool runs VAL's Validate through the planutils front-end. It has no time limit.
func DefaultTool() process.Tool {
	return process.Tool{
		Command: "planutils",
		Args:    []string{"run", "val", "Validate", "{domain}", "{problem}", "{plan}"},
	}
}

// Stage runs the validator.
type Stage struct {
	runner ports.ProcessRunner
	tool   process.Tool
	marker string
	dir    string
	logger *slog.Logger
}

// Option configures the stage.
type Option func(*Stage)

// WithTool overrides the validator command line.
func WithTool(tool process.Tool) Option {
	return func(s *Stage) {
		s.tool = tool
	}
}

// WithMarker overrides the success marker searched for in the log.
func WithMarker(marker string) Option {
	return func(s *Stage) {
		if marker != "" {
			s.marker = marker
		}
	}
}

// WithDir sets the validator's working directory.
func WithDir(dir string) Option {
	return func(s *Stage) {
		s.dir = dir
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		s.logger = logger
	}
}

// New creates a validation stage.
func New(runner ports.ProcessRunner, opts ...Option) *Stage {
	s := &Stage{
		runner: runner,
		tool:   DefaultTool(),
		marker: DefaultMarker,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks planPath against the domain/problem pair.
//
// The plan is valid iff the combined validator log contains the marker. Subprocess
// failures (non-zero exit, missing binary) are folded into the log and yield an
// invalid outcome; only context cancellation is returned as an error.
func (s *Stage) Validate(ctx context.Context, domainPath, problemPath, planPath string) (domain.ValidationOutcome, error) {
	inv := s.tool.Invocation("validator", s.dir, map[string]string{
		"domain":  absOrSelf(domainPath),
		"problem": absOrSelf(problemPath),
		"plan":    absOrSelf(planPath),
	})

	res, err := s.runner.Run(ctx, inv)
	if err != nil && ctx.Err() != nil {
		return domain.ValidationOutcome{Log: res.Log, ExitCode: res.ExitCode}, err
	}
	if err != nil {
		s.logger.Warn("validator run returned error", "err", err)
	}

	outcome := domain.ValidationOutcome{
		Valid:    Interpret(res.Log, s.marker),
		Log:      res.Log,
		ExitCode: res.ExitCode,
	}
	if outcome.Valid && res.ExitCode != 0 {
		s.logger.Warn("validator reported a valid plan with a non-zero exit status", "exit_code", res.ExitCode)
	}
	s.logger.Info("validation finished", "valid", outcome.Valid, "exit_code", res.ExitCode)
	return outcome, nil
}

// Interpret reports whether log contains marker. Matching is literal and case-sensitive.
func Interpret(log, marker string) bool {
	if marker == "" {
		marker = DefaultMarker
	}
	return strings.Contains(log, marker)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
