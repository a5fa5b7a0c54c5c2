package task

import (
	"context"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"timer-todos/pkg/slot"
)

// Store owns the ordered task collection and mirrors it into a slot after
// every mutation. A Store is not safe for concurrent use; callers serialize
// access (see todo.App).
type Store struct {
	slot  slot.Slot
	key   string
	tasks []Task

	now   func() time.Time
	newID func() string
}

// NewStore creates a Store and loads the collection from s under key.
// A missing, unreadable or unparseable value yields an empty collection.
func NewStore(ctx context.Context, s slot.Slot, key string) *Store {
	if key == "" {
		key = slot.DefaultKey
	}
	st := &Store{
		slot: s,
		key:  key,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	st.load(ctx)
	return st
}

func (s *Store) load(ctx context.Context) {
	s.tasks = []Task{}
	value, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		log.Printf("task: read slot %q: %v", s.key, err)
		return
	}
	if !ok {
		return
	}
	tasks, err := Decode(value)
	if err != nil {
		log.Printf("task: discarding unreadable slot %q: %v", s.key, err)
		return
	}
	s.tasks = tasks
}

// persist writes the whole collection. Failures are logged; the in-memory
// collection stays authoritative.
func (s *Store) persist(ctx context.Context) {
	value, err := Encode(s.tasks)
	if err != nil {
		log.Printf("task: encode: %v", err)
		return
	}
	if err := s.slot.Set(ctx, s.key, value); err != nil {
		log.Printf("task: persist: %v", err)
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// Add appends a new task. It returns false without creating anything when
// text is empty after trimming. Negative durations are stored as zero.
func (s *Store) Add(ctx context.Context, text string, durationSeconds int) (Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}
	t := Task{
		ID:        s.newID(),
		Text:      text,
		Duration:  max(durationSeconds, 0),
		CreatedAt: s.now(),
	}
	s.tasks = append(s.tasks, t)
	s.persist(ctx)
	return t, true
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// List returns the tasks matching f in insertion order.
func (s *Store) List(f Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Stats counts the collection.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}
	return st
}

// ToggleCompleted flips the completed flag. Un-completing a task also
// clears TimerCompleted.
//
// If the task is the timer's active task the caller must deactivate the
// timer afterwards.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	if !t.Completed {
		t.TimerCompleted = false
	}
	s.persist(ctx)
	return *t, true
}

// Remove deletes the task. The caller must deactivate the timer afterwards
// if the task was active.
func (s *Store) Remove(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persist(ctx)
	return true
}

// ClearCompleted removes every completed task and returns the removed ids.
func (s *Store) ClearCompleted(ctx context.Context) []string {
	var removed []string
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Completed {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	if len(removed) == 0 {
		return nil
	}
	s.tasks = kept
	s.persist(ctx)
	return removed
}

// MarkTimerCompleted sets Completed and TimerCompleted together. It is
// called by the timer on natural expiry.
func (s *Store) MarkTimerCompleted(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = true
	s.tasks[i].TimerCompleted = true
	s.persist(ctx)
	return true
}
