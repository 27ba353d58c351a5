/*
Package domain contains the core models of the plancheck pipeline.

It defines what flows between the stages (invocations, execution results, plans and
validation outcomes), the pipeline state machine with its exit-code mapping, and the
error taxonomy. This package is kept pure and free of I/O so that every adapter and
stage can depend on it.

# Key Entities

  - Invocation: a single external command call (command, args, time limit).
  - ExecutionResult: captured output of one invocation plus the timed-out flag.
  - Plan: the action lines recovered from the solver artifact.
  - ValidationOutcome: the validator verdict and its raw log.
  - State: the pipeline state machine (init -> solving -> ... -> done).
  - RunReport: the persisted record of one pipeline run.
*/
package domain
