// Package chime provides completion cues for expired timers.
package chime

import (
	"io"
	"log"
	"sync"
)

// Bell rings the terminal bell on w.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell creates a Bell writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Play implements timer.Chime. Write errors are logged, never returned.
func (b *Bell) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		log.Printf("chime: %v", err)
	}
}

// Nop is a silent chime.
type Nop struct{}

// Play implements timer.Chime.
func (Nop) Play() {}
