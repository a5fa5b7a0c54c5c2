// Package notify fans out change notifications from the task list to front
// ends so they know when to re-read state.
package notify

import (
	"sync"
	"time"
)

// Event types.
const (
	TaskAdded    = "task.added"
	TaskToggled  = "task.toggled"
	TaskRemoved  = "task.removed"
	TaskCleared  = "task.cleared"
	TimerStarted = "timer.started"
	TimerPaused  = "timer.paused"
	TimerResumed = "timer.resumed"
	TimerReset   = "timer.reset"
	TimerStopped = "timer.stopped"
	TimerTick    = "timer.tick"
	TimerExpired = "timer.expired"
)

// Event describes one change. It carries no state; subscribers pull a
// fresh snapshot.
type Event struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus is an in-process fan-out of events.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Publish delivers e to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber is behind; drop to avoid blocking the tick
		}
	}
	b.mu.RUnlock()
}

// Subscribe returns a buffered channel that receives all new events.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}
