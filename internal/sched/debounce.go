// Package sched provides the trailing-edge debouncer used for autosave and
// live preview: rapid repeated triggers coalesce into a single execution
// after the quiet period.
package sched

import (
	"sync"
	"time"
)

// Debouncer runs a function once the configured duration has passed since
// the most recent Trigger. A superseding trigger simply replaces the
// pending timer; there is no cancellation token.
type Debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

// Trigger schedules fn to run after the quiet period, replacing any pending
// run. The latest fn wins.
func (b *Debouncer) Trigger(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, fn)
}

// Stop cancels any pending run.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
