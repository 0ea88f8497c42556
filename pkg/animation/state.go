package animation

import "fmt"

// RunState is the lifecycle state shared by drivers and combinators.
//
//	        Start            completion predicate holds
//	Idle ─────────► Running ───────────────────────────► Finished
//	                   │
//	                   │ Stop / superseded by a newer writer
//	                   ▼
//	               Cancelled
//
// Finished and Cancelled are terminal until Reset returns the animation to Idle.
type RunState int

const (
	// Idle means the animation has not been started (or was Reset).
	Idle RunState = iota
	// Running means the animation is advanced on every tick.
	Running
	// Finished means the animation reached its goal.
	Finished
	// Cancelled means the animation was stopped before reaching its goal.
	Cancelled
)

// String returns a human-readable representation of the run state.
func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Result is delivered to a completion callback exactly once per run.
type Result struct {
	// Finished is true when the animation reached its goal, false when it was
	// stopped, superseded, or aborted.
	Finished bool
	// Err is non-nil when the run was aborted by a failure during a tick.
	Err error
}
