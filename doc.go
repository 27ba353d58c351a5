/*
Package plancheck tests whether a planning problem can be solved within a time budget
and whether the plan the solver produces is correct.

It does no planning or validation itself. It orchestrates two external tools, by default
the dual-bfws-ffparser planner and the VAL validator reached through the planutils
front-end, and owns the process control around them:

  - the solver runs as the leader of its own process group under a hard deadline;
  - on timeout the whole group receives SIGTERM, then SIGKILL after a grace period;
  - the plan artifact is recovered from an isolated workspace and always cleaned up;
  - the plan is validated from a scoped temporary file that never outlives the run.

# Usage

	checker, err := plancheck.New(plancheck.WithTimeLimit(10 * time.Second))
	if err != nil {
		log.Fatal(err)
	}
	defer checker.Close()

	report, err := checker.Check(ctx, "domain.pddl", "p01.pddl")
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(report.ExitCode) // 0 valid, 1 no plan, 2 invalid plan

Run reports can be persisted with WithStore (memory, file and redis adapters live under
pkg/adapters) and observed through WithLifecycleHooks, e.g. with pkg/observability.
*/
package plancheck
