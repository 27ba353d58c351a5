/*
Package ports defines the driven ports (interfaces) of the plancheck pipeline.

These interfaces decouple the stages from concrete implementations, allowing the
pipeline to run against real processes or fakes, and to persist run reports in
memory, on disk or in Redis.

# Key Interfaces

  - ProcessRunner: Runs one external command under a deadline.
  - ReportStore: Persists and loads RunReports.
  - Locker: Serializes pipeline runs that share a workspace.
*/
package ports
