package solver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/plancheck/internal/testutils"
	"github.com/aretw0/plancheck/pkg/adapters/process"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/solver"
	"github.com/aretw0/plancheck/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRunner implements ports.ProcessRunner.
type MockRunner struct {
	mock.Mock
	// OnRun simulates what the solver leaves in the workspace.
	OnRun func(inv domain.Invocation)
}

func (m *MockRunner) Run(ctx context.Context, inv domain.Invocation) (domain.ExecutionResult, error) {
	if m.OnRun != nil {
		m.OnRun(inv)
	}
	args := m.Called(ctx, inv)
	return args.Get(0).(domain.ExecutionResult), args.Error(1)
}

func found(name string) (string, error) { return "/usr/bin/" + name, nil }

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	return ws
}

func TestSolve_ToolMissing(t *testing.T) {
	ws := newWorkspace(t)
	stale := ws.ArtifactPath()
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	runner := new(MockRunner)
	stage := solver.New(runner, ws, solver.WithToolResolver(process.LookPath))
	testutils.HidePlanutils(t)

	_, err := stage.Solve(context.Background(), "domain.pddl", "p01.pddl")

	assert.ErrorIs(t, err, domain.ErrToolMissing)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	assert.FileExists(t, stale, "no artifact is touched when the tool is missing")
}

func TestSolve_RecoversPlan(t *testing.T) {
	ws := newWorkspace(t)
	runner := &MockRunner{OnRun: func(inv domain.Invocation) {
		_ = os.WriteFile(filepath.Join(inv.Dir, "plan"), []byte("(pick-up a)\n"), 0o644)
	}}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(inv domain.Invocation) bool {
		return inv.Label == "solver" &&
			inv.Command == "planutils" &&
			inv.TimeLimit == solver.DefaultTimeLimit &&
			inv.Dir == ws.Dir() &&
			len(inv.Args) == 4 &&
			inv.Args[1] == "dual-bfws-ffparser" &&
			filepath.IsAbs(inv.Args[2]) && filepath.IsAbs(inv.Args[3])
	})).Return(domain.ExecutionResult{Log: "found plan"}, nil)

	stage := solver.New(runner, ws, solver.WithToolResolver(found))
	res, err := stage.Solve(context.Background(), "domain.pddl", "p01.pddl")

	require.NoError(t, err)
	assert.Equal(t, "(pick-up a)\n", res.Plan.Text)
	assert.Equal(t, "found plan", res.Execution.Log)
	assert.NoFileExists(t, ws.ArtifactPath())
	runner.AssertExpectations(t)
}

func TestSolve_ClearsStaleArtifactBeforeRun(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.WriteFile(ws.ArtifactPath(), []byte("(from-previous-run)\n"), 0o644))

	runner := &MockRunner{OnRun: func(inv domain.Invocation) {
		_, err := os.Stat(filepath.Join(inv.Dir, "plan"))
		assert.True(t, os.IsNotExist(err), "artifact must be cleared before the solver starts")
	}}
	runner.On("Run", mock.Anything, mock.Anything).Return(domain.ExecutionResult{}, nil)

	stage := solver.New(runner, ws, solver.WithToolResolver(found))
	_, err := stage.Solve(context.Background(), "domain.pddl", "p01.pddl")

	var solveErr *domain.SolveError
	require.ErrorAs(t, err, &solveErr)
	assert.Equal(t, domain.ReasonNoPlan, solveErr.Reason)
}

func TestSolve_FailureReasons(t *testing.T) {
	tests := []struct {
		name     string
		result   domain.ExecutionResult
		runErr   error
		artifact string
		want     domain.SolveReason
	}{
		{name: "timed out", result: domain.ExecutionResult{TimedOut: true, ExitCode: -1}, want: domain.ReasonTimeout},
		{name: "exited without plan", result: domain.ExecutionResult{ExitCode: 1, Log: "unsolvable"}, want: domain.ReasonNoPlan},
		{name: "empty artifact", result: domain.ExecutionResult{}, artifact: "", want: domain.ReasonNoPlan},
		{name: "start failure", result: domain.ExecutionResult{ExitCode: -1}, runErr: assert.AnError, want: domain.ReasonNoPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			runner := &MockRunner{OnRun: func(inv domain.Invocation) {
				if tt.name == "empty artifact" {
					_ = os.WriteFile(filepath.Join(inv.Dir, "plan"), []byte(tt.artifact), 0o644)
				}
			}}
			runner.On("Run", mock.Anything, mock.Anything).Return(tt.result, tt.runErr)

			stage := solver.New(runner, ws, solver.WithToolResolver(found))
			_, err := stage.Solve(context.Background(), "domain.pddl", "p01.pddl")

			assert.ErrorIs(t, err, domain.ErrSolveFailed)
			var solveErr *domain.SolveError
			require.ErrorAs(t, err, &solveErr)
			assert.Equal(t, tt.want, solveErr.Reason)
			assert.NoFileExists(t, ws.ArtifactPath())
		})
	}
}

func TestSolve_FixtureSolver(t *testing.T) {
	const planText = "(unstack c a)\n(put-down c)\n(pick-up a)\n(stack a b)\n; cost = 4 (unit cost)\n"
	testutils.InstallFrontEnd(t, testutils.FrontEnd{Plan: planText, SolverLog: "Solution found."})
	domainPath, problemPath := testutils.WriteInputs(t)

	ws := newWorkspace(t)
	stage := solver.New(process.NewRunner(), ws)

	res, err := stage.Solve(context.Background(), domainPath, problemPath)
	require.NoError(t, err)
	assert.Equal(t, planText, res.Plan.Text)
	assert.Contains(t, res.Execution.Log, "Solution found.")
	assert.NoFileExists(t, ws.ArtifactPath())
}

func TestSolve_FixtureSolverTimesOut(t *testing.T) {
	testutils.InstallFrontEnd(t, testutils.FrontEnd{SolverHangs: true, Plan: "(too-late)\n"})
	domainPath, problemPath := testutils.WriteInputs(t)

	ws := newWorkspace(t)
	tool := solver.DefaultTool()
	tool.TimeLimit = 200 * time.Millisecond
	stage := solver.New(process.NewRunner(process.WithGracePeriod(300*time.Millisecond)), ws, solver.WithTool(tool))

	start := time.Now()
	_, err := stage.Solve(context.Background(), domainPath, problemPath)

	var solveErr *domain.SolveError
	require.ErrorAs(t, err, &solveErr)
	assert.Equal(t, domain.ReasonTimeout, solveErr.Reason)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSolve_TwoRunsNeverShareAPlan(t *testing.T) {
	domainPath, problemPath := testutils.WriteInputs(t)
	ws := newWorkspace(t)

	testutils.InstallFrontEnd(t, testutils.FrontEnd{Plan: "(first)\n"})
	first, err := solver.New(process.NewRunner(), ws).Solve(context.Background(), domainPath, problemPath)
	require.NoError(t, err)
	assert.Equal(t, "(first)\n", first.Plan.Text)

	testutils.InstallFrontEnd(t, testutils.FrontEnd{})
	_, err = solver.New(process.NewRunner(), ws).Solve(context.Background(), domainPath, problemPath)
	assert.ErrorIs(t, err, domain.ErrSolveFailed, "second run must not read the first run's plan")
}
