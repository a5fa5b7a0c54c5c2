// Package todo ties the task store and the countdown engine together behind
// one set of user intents. It keeps the two components consistent (a deleted
// or manually completed task never stays bound to the countdown), serializes
// ticks against intents, and publishes a notification for every change.
package todo

import (
	"context"
	"log"
	"sync"
	"time"

	"timer-todos/pkg/notify"
	"timer-todos/pkg/task"
	"timer-todos/pkg/timer"
)

// Options configure an App.
type Options struct {
	// AutoStart starts a new task's countdown when it has a duration.
	AutoStart bool
	// Interval is the tick cadence; zero means timer.DefaultInterval.
	Interval time.Duration
}

// View is a point-in-time copy of everything a front end renders.
type View struct {
	Tasks    []task.Task    `json:"tasks"`
	Timer    timer.Snapshot `json:"timer"`
	Progress float64        `json:"progress"`
	Stats    task.Stats     `json:"stats"`
}

// App is safe for concurrent use. Every method holds the same lock, so a
// tick and its completion side effects finish before the next intent runs.
type App struct {
	mu     sync.Mutex
	store  *task.Store
	engine *timer.Engine
	bus    *notify.Bus
	opts   Options

	ticker *timer.Handle
}

// New creates an App around store. chime may be nil.
func New(store *task.Store, chime timer.Chime, opts Options) *App {
	if opts.Interval <= 0 {
		opts.Interval = timer.DefaultInterval
	}
	return &App{
		store:  store,
		engine: timer.NewEngine(store, chime),
		bus:    notify.NewBus(),
		opts:   opts,
	}
}

// Bus returns the change notification bus.
func (a *App) Bus() *notify.Bus {
	return a.bus
}

func (a *App) publish(eventType, taskID string) {
	a.bus.Publish(notify.Event{Type: eventType, TaskID: taskID})
}

// Run arms the tick schedule. It is a no-op while a schedule is live, so
// there is never more than one tick source. A schedule whose context was
// cancelled is replaced. The schedule ends on Close or when ctx is
// cancelled.
func (a *App) Run(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h := a.ticker; h != nil {
		if h.Err() == nil {
			return
		}
		// An in-flight tick needs the lock to finish.
		a.ticker = nil
		a.mu.Unlock()
		h.Stop()
		a.mu.Lock()
		if a.ticker != nil {
			return
		}
	}
	a.ticker = timer.Every(ctx, a.opts.Interval, func(ctx context.Context) {
		a.Tick(ctx)
	})
	log.Printf("todo: ticking every %s", a.opts.Interval)
}

// Close cancels the tick schedule and waits for an in-flight tick.
func (a *App) Close() {
	a.mu.Lock()
	h := a.ticker
	a.ticker = nil
	a.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

// Add creates a task. Empty text is rejected silently (ok is false).
func (a *App) Add(ctx context.Context, text string, durationSeconds int) (task.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.store.Add(ctx, text, durationSeconds)
	if !ok {
		return task.Task{}, false
	}
	a.publish(notify.TaskAdded, t.ID)

	if a.opts.AutoStart && t.Duration > 0 {
		if prev, active := a.engine.ActiveID(); active {
			a.publish(notify.TimerStopped, prev)
		}
		a.engine.Start(ctx, t.ID)
		a.publish(notify.TimerStarted, t.ID)
	}
	return t, true
}

// Toggle flips a task's completed flag. Completing the active task stops
// the countdown.
func (a *App) Toggle(ctx context.Context, id string) (task.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.store.ToggleCompleted(ctx, id)
	if !ok {
		return task.Task{}, false
	}
	a.publish(notify.TaskToggled, id)
	if t.Completed && a.engine.Deactivate(id) {
		a.publish(notify.TimerStopped, id)
	}
	return t, true
}

// Remove deletes a task, then unbinds it from the countdown if it was
// active.
func (a *App) Remove(ctx context.Context, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.store.Remove(ctx, id) {
		return false
	}
	a.publish(notify.TaskRemoved, id)
	if a.engine.Deactivate(id) {
		a.publish(notify.TimerStopped, id)
	}
	return true
}

// ClearCompleted removes all completed tasks and returns how many went.
func (a *App) ClearCompleted(ctx context.Context) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := a.store.ClearCompleted(ctx)
	for _, id := range removed {
		if a.engine.Deactivate(id) {
			a.publish(notify.TimerStopped, id)
		}
	}
	if len(removed) > 0 {
		a.publish(notify.TaskCleared, "")
	}
	return len(removed)
}

// Start binds id to the countdown, or toggles pause/resume if it is already
// bound.
func (a *App) Start(ctx context.Context, id string) timer.State {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.store.Get(id)
	if !ok {
		return a.engine.State()
	}
	before, _ := a.engine.ActiveID()
	state := a.engine.Start(ctx, id)
	after, _ := a.engine.ActiveID()

	switch {
	case before == id && state == timer.Paused:
		a.publish(notify.TimerPaused, id)
	case before == id:
		a.publish(notify.TimerResumed, id)
	default:
		if before != "" {
			a.publish(notify.TimerStopped, before)
		}
		if after == id {
			a.publish(notify.TimerStarted, id)
		}
	}
	// Zero-duration tasks complete inside Start.
	if now, _ := a.store.Get(id); now.TimerCompleted && !t.TimerCompleted {
		a.publish(notify.TimerExpired, id)
	}
	return state
}

// Pause pauses the countdown.
func (a *App) Pause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.engine.Pause() {
		return false
	}
	id, _ := a.engine.ActiveID()
	a.publish(notify.TimerPaused, id)
	return true
}

// Resume resumes a paused countdown.
func (a *App) Resume() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.engine.Resume() {
		return false
	}
	id, _ := a.engine.ActiveID()
	a.publish(notify.TimerResumed, id)
	return true
}

// Reset rewinds the active task's countdown and pauses it.
func (a *App) Reset(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.engine.Reset(id) {
		return false
	}
	a.publish(notify.TimerReset, id)
	return true
}

// Stop dismisses the countdown.
func (a *App) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, _ := a.engine.ActiveID()
	if !a.engine.Stop() {
		return false
	}
	a.publish(notify.TimerStopped, id)
	return true
}

// Tick advances the countdown by one second. It returns true when the tick
// expired the active task.
func (a *App) Tick(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, active := a.engine.ActiveID()
	if !active || !a.engine.IsRunning() {
		return false
	}
	expired := a.engine.Tick(ctx)
	switch {
	case expired:
		log.Printf("todo: timer expired for task %s", id)
		a.publish(notify.TimerExpired, id)
	case a.engine.IsActive(id):
		a.publish(notify.TimerTick, id)
	default:
		a.publish(notify.TimerStopped, id)
	}
	return expired
}

// Get returns one task.
func (a *App) Get(id string) (task.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Get(id)
}

// Timer returns the countdown state.
func (a *App) Timer() timer.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Snapshot()
}

// Snapshot returns the filtered task list with the countdown state.
func (a *App) Snapshot(f task.Filter) View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return View{
		Tasks:    a.store.List(f),
		Timer:    a.engine.Snapshot(),
		Progress: a.engine.Progress(),
		Stats:    a.store.Stats(),
	}
}
