package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventProcessStart EventType = "process_start"
	EventProcessExit  EventType = "process_exit"
	EventTerminate    EventType = "terminate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// StateEvent represents a pipeline transition.
type StateEvent struct {
	EventBase
	From State `json:"from"`
	To   State `json:"to"`
}

// ProcessEvent represents the start or the exit of an external process.
type ProcessEvent struct {
	EventBase
	Label    string        `json:"label"`
	Command  string        `json:"command"`
	PID      int           `json:"pid,omitempty"`
	ExitCode int           `json:"exit_code,omitempty"`
	TimedOut bool          `json:"timed_out,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// SignalEvent represents a termination signal sent to a process group.
type SignalEvent struct {
	EventBase
	Label    string `json:"label"`
	PID      int    `json:"pid"`
	Escalate bool   `json:"escalate"` // false: graceful, true: forceful
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStateChange  func(context.Context, *StateEvent)
	OnProcessStart func(context.Context, *ProcessEvent)
	OnProcessExit  func(context.Context, *ProcessEvent)
	OnTerminate    func(context.Context, *SignalEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStateChange:  chain(h.OnStateChange, other.OnStateChange),
		OnProcessStart: chain(h.OnProcessStart, other.OnProcessStart),
		OnProcessExit:  chain(h.OnProcessExit, other.OnProcessExit),
		OnTerminate:    chain(h.OnTerminate, other.OnTerminate),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
