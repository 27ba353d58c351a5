/*
Package observability turns pipeline lifecycle hooks into Prometheus metrics and
structured log lines.

Both helpers return domain.LifecycleHooks, so they compose with each other and with
caller hooks through LifecycleHooks.Merge.
*/
package observability
