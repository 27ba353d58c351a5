package plancheck_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/plancheck"
	"github.com/aretw0/plancheck/internal/testutils"
	"github.com/aretw0/plancheck/pkg/adapters/memory"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/observability"
)

type blockRecorder struct {
	mu     sync.Mutex
	labels []string
	logs   []string
}

func (r *blockRecorder) LogBlock(label, log string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
	r.logs = append(r.logs, log)
}

func TestFacade_Integration(t *testing.T) {
	bin := testutils.InstallFrontEnd(t, testutils.FrontEnd{
		Plan:         "(pick-up a)\n(stack a b)\n",
		SolverLog:    "search: 2 nodes expanded",
		ValidatorLog: "Plan executed successfully - checking goal\nPlan valid",
	})
	domainPath, problemPath := testutils.WriteInputs(t)

	store := memory.NewStore()
	sink := &blockRecorder{}
	checker, err := plancheck.New(plancheck.WithStore(store), plancheck.WithLogSink(sink))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	report, err := checker.Check(context.Background(), domainPath, problemPath)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.ExitCode != domain.ExitValid {
		t.Errorf("Expected exit code 0, got %d (state %s)", report.ExitCode, report.State)
	}
	if got := report.Plan.Lines(); len(got) != 2 {
		t.Errorf("Expected 2 plan steps, got %v", got)
	}
	if calls := testutils.Calls(t, bin); strings.Join(calls, ",") != "dual-bfws-ffparser,val" {
		t.Errorf("Unexpected front-end calls: %v", calls)
	}
	if strings.Join(sink.labels, ",") != "solver,validator" {
		t.Errorf("Expected solver then validator log blocks, got %v", sink.labels)
	}
	if !strings.Contains(sink.logs[0], "2 nodes expanded") {
		t.Errorf("Solver log block missing solver output: %q", sink.logs[0])
	}

	if _, err := store.Load(context.Background(), report.ID); err != nil {
		t.Errorf("Report %s was not persisted: %v", report.ID, err)
	}

	ws := checker.Workspace()
	if err := checker.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(ws); !os.IsNotExist(err) {
		t.Errorf("Expected temp workspace %s to be removed, stat err = %v", ws, err)
	}
}

func TestFacade_ExitCodes(t *testing.T) {
	domainPath, problemPath := testutils.WriteInputs(t)

	tests := []struct {
		name string
		fe   testutils.FrontEnd
		want int
	}{
		{"valid", testutils.FrontEnd{Plan: "(a)\n", ValidatorLog: "Plan valid"}, 0},
		{"no plan", testutils.FrontEnd{SolverLog: "unsolvable"}, 1},
		{"invalid", testutils.FrontEnd{Plan: "(a)\n", ValidatorLog: "Plan failed to execute"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutils.InstallFrontEnd(t, tt.fe)
			checker, err := plancheck.New()
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			defer checker.Close()

			report, err := checker.Check(context.Background(), domainPath, problemPath)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if report.ExitCode != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, report.ExitCode)
			}
		})
	}
}

func TestFacade_TimeoutIsObservable(t *testing.T) {
	testutils.InstallFrontEnd(t, testutils.FrontEnd{SolverHangs: true, Plan: "(late)\n"})
	domainPath, problemPath := testutils.WriteInputs(t)

	metrics := observability.NewMetrics()
	var mu sync.Mutex
	var signals []bool
	hooks := domain.LifecycleHooks{
		OnTerminate: func(_ context.Context, e *domain.SignalEvent) {
			mu.Lock()
			defer mu.Unlock()
			signals = append(signals, e.Escalate)
		},
	}

	checker, err := plancheck.New(
		plancheck.WithTimeLimit(200*time.Millisecond),
		plancheck.WithGracePeriod(200*time.Millisecond),
		plancheck.WithLifecycleHooks(metrics.Hooks()),
		plancheck.WithLifecycleHooks(hooks),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer checker.Close()

	report, err := checker.Check(context.Background(), domainPath, problemPath)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !report.TimedOut || report.ExitCode != domain.ExitSolveFailed {
		t.Errorf("Expected a timed-out run with exit 1, got timed_out=%v exit=%d", report.TimedOut, report.ExitCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(signals) != 2 || signals[0] || !signals[1] {
		t.Errorf("Expected graceful then forceful signal, got %v", signals)
	}
}

func TestFacade_SharedWorkspace(t *testing.T) {
	testutils.InstallFrontEnd(t, testutils.FrontEnd{Plan: "(a)\n", ValidatorLog: "Plan valid"})
	domainPath, problemPath := testutils.WriteInputs(t)
	dir := t.TempDir()

	checker, err := plancheck.New(plancheck.WithWorkspace(dir), plancheck.WithArtifact("plan"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := checker.Check(context.Background(), domainPath, problemPath); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if err := checker.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Caller-owned workspace must survive Close: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected workspace to be left empty, found %d entries (first: %s)", len(entries), filepath.Join(dir, entries[0].Name()))
	}
}

func TestFacade_ToolMissing(t *testing.T) {
	testutils.SkipUnlessPOSIX(t)
	testutils.HidePlanutils(t)
	domainPath, problemPath := testutils.WriteInputs(t)

	checker, err := plancheck.New(plancheck.WithLocker(memory.NewLocker(), time.Minute))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer checker.Close()

	report, err := checker.Check(context.Background(), domainPath, problemPath)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.ExitCode != 1 || !strings.Contains(report.SolveFailure, "command not found") {
		t.Errorf("Expected tool-missing failure, got exit=%d failure=%q", report.ExitCode, report.SolveFailure)
	}
}
