/*
Package process runs external commands under a wall-clock deadline.

Every command is started as the leader of its own process group. When the
deadline elapses (or the context is canceled) the whole group receives a graceful
termination signal, then, after a grace period, a forceful one, followed by a
blocking reap. Run never returns while the child is still alive.

	r := process.NewRunner(process.WithGracePeriod(3 * time.Second))
	res, err := r.Run(ctx, domain.Invocation{
		Label:     "solver",
		Command:   "planutils",
		Args:      []string{"run", "dual-bfws-ffparser", "domain.pddl", "p01.pddl"},
		TimeLimit: 5 * time.Second,
	})
*/
package process
