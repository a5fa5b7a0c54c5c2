package task

import (
	"fmt"
	"time"
)

// Task is a to-do item with an optional countdown duration.
type Task struct {
	ID             string    `json:"id" yaml:"id"`
	Text           string    `json:"text" yaml:"text"`
	Completed      bool      `json:"completed" yaml:"completed"`
	Duration       int       `json:"duration" yaml:"duration"`             // total seconds, immutable
	TimerCompleted bool      `json:"timerCompleted" yaml:"timerCompleted"` // set only on natural expiry
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
}

// Expired reports whether the task has no countdown left to run.
// Zero-duration tasks are created expired.
func (t Task) Expired() bool {
	return t.Duration == 0 || t.TimerCompleted
}

// Filter selects a subset of the collection for display.
type Filter string

const (
	All       Filter = "all"
	Active    Filter = "active"    // not completed
	Completed Filter = "completed" // completed, manually or by timer
)

// ParseFilter maps a user-supplied name to a Filter. Unknown or empty names
// select All.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case Active, Completed:
		return Filter(s)
	default:
		return All
	}
}

// Match reports whether t belongs in the filtered view.
func (f Filter) Match(t Task) bool {
	switch f {
	case Active:
		return !t.Completed
	case Completed:
		return t.Completed
	default:
		return true
	}
}

// Stats summarizes the collection.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// FromParts converts the hours/minutes form input to seconds.
// Negative parts count as zero.
func FromParts(hours, minutes int) int {
	return max(hours, 0)*3600 + max(minutes, 0)*60
}

// FormatClock renders seconds as "1h 2m 3s".
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
