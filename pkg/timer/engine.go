// Package timer implements the single shared countdown that task timers run
// on. At most one task is bound to the countdown at a time; a tick
// decrements it and, on reaching zero, marks the task complete and plays the
// completion chime once.
package timer

import (
	"context"

	"timer-todos/pkg/task"
)

// State is the countdown's lifecycle state.
type State string

const (
	Idle    State = "idle"    // no active task
	Running State = "running" // active task, decrementing
	Paused  State = "paused"  // active task, not decrementing

	// Expired is transient: a tick that reaches zero runs the completion
	// side effects and lands in Idle. Snapshots never report it.
	Expired State = "expired"
)

// Tasks is the slice of the task store the engine needs.
type Tasks interface {
	Get(id string) (task.Task, bool)
	MarkTimerCompleted(ctx context.Context, id string) bool
}

// Chime plays the completion cue. It must not block.
type Chime interface {
	Play()
}

// ChimeFunc adapts a function to Chime.
type ChimeFunc func()

// Play implements Chime.
func (f ChimeFunc) Play() { f() }

// Snapshot is a copy of the engine state for display.
type Snapshot struct {
	ActiveID string `json:"active_id,omitempty"`
	State    State  `json:"state"`
	TimeLeft int    `json:"time_left"`
	Duration int    `json:"duration"`
}

// Engine is the countdown state machine. It is not safe for concurrent use.
type Engine struct {
	tasks Tasks
	chime Chime

	activeID string
	duration int // duration of the active task, cached at activation
	timeLeft int
	running  bool
}

// NewEngine creates an idle Engine. chime may be nil.
func NewEngine(tasks Tasks, chime Chime) *Engine {
	return &Engine{tasks: tasks, chime: chime}
}

// State returns the current state.
func (e *Engine) State() State {
	switch {
	case e.activeID == "":
		return Idle
	case e.running:
		return Running
	default:
		return Paused
	}
}

// ActiveID returns the task bound to the countdown, if any.
func (e *Engine) ActiveID() (string, bool) {
	return e.activeID, e.activeID != ""
}

// IsActive reports whether id is the active task.
func (e *Engine) IsActive(id string) bool {
	return id != "" && e.activeID == id
}

// TimeLeft returns the remaining seconds; 0 when idle.
func (e *Engine) TimeLeft() int {
	return e.timeLeft
}

// IsRunning reports whether the countdown is decrementing.
func (e *Engine) IsRunning() bool {
	return e.running
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		ActiveID: e.activeID,
		State:    e.State(),
		TimeLeft: e.timeLeft,
		Duration: e.duration,
	}
}

// Progress returns the elapsed fraction of the active task's duration in
// [0, 1]. It is 0 when idle or when the duration is zero.
func (e *Engine) Progress() float64 {
	if e.activeID == "" || e.duration == 0 {
		return 0
	}
	return float64(e.duration-e.timeLeft) / float64(e.duration)
}

// Start binds id to the countdown, or toggles pause/resume when id is
// already bound. Starting a different task ends the previous association.
// A zero-duration task goes straight to completion handling and leaves the
// engine idle. Unknown ids are ignored.
//
// It returns the state after the call.
func (e *Engine) Start(ctx context.Context, id string) State {
	if e.IsActive(id) {
		e.running = !e.running
		return e.State()
	}

	t, ok := e.tasks.Get(id)
	if !ok {
		return e.State()
	}

	e.clear()
	if t.Duration == 0 {
		if !t.TimerCompleted {
			e.complete(ctx, t.ID)
		}
		return Idle
	}

	e.activeID = t.ID
	e.duration = t.Duration
	e.timeLeft = t.Duration
	e.running = true
	return Running
}

// Pause stops the countdown without unbinding the task. It is a no-op when
// idle or already paused.
func (e *Engine) Pause() bool {
	if e.activeID == "" || !e.running {
		return false
	}
	e.running = false
	return true
}

// Resume continues a paused countdown from where it stopped.
func (e *Engine) Resume() bool {
	if e.activeID == "" || e.running || e.timeLeft == 0 {
		return false
	}
	e.running = true
	return true
}

// Reset rewinds the active task's countdown to its full duration and pauses
// it. It only acts when id is the active task.
func (e *Engine) Reset(id string) bool {
	if !e.IsActive(id) {
		return false
	}
	e.timeLeft = e.duration
	e.running = false
	return true
}

// Stop unbinds the active task from any state. It returns false when the
// engine was already idle.
func (e *Engine) Stop() bool {
	if e.activeID == "" {
		return false
	}
	e.clear()
	return true
}

// Deactivate stops the countdown only if id is the active task. Deleting or
// manually completing a task must call it.
func (e *Engine) Deactivate(id string) bool {
	if !e.IsActive(id) {
		return false
	}
	e.clear()
	return true
}

// Tick advances the countdown by one second. It returns true when this tick
// reached zero and fired completion.
func (e *Engine) Tick(ctx context.Context) bool {
	if e.activeID == "" || !e.running {
		return false
	}
	if e.timeLeft <= 0 {
		// Already expired; completion has fired.
		e.running = false
		return false
	}
	if _, ok := e.tasks.Get(e.activeID); !ok {
		e.clear()
		return false
	}

	e.timeLeft--
	if e.timeLeft > 0 {
		return false
	}

	id := e.activeID
	e.clear()
	e.complete(ctx, id)
	return true
}

func (e *Engine) complete(ctx context.Context, id string) {
	e.tasks.MarkTimerCompleted(ctx, id)
	if e.chime != nil {
		e.chime.Play()
	}
}

func (e *Engine) clear() {
	e.activeID = ""
	e.duration = 0
	e.timeLeft = 0
	e.running = false
}
