// Package editor maintains the mutable text buffer behind the editing
// surface: clean/dirty tracking, bounded undo/redo, debounced autosave and
// a periodic flush.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rfinnegan/mdserve/internal/sched"
	"github.com/rfinnegan/mdserve/internal/store"
)

// Editor owns the text buffer. Safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	buf   string
	dirty bool
	hist  *history

	st       *store.StateStore
	autosave *sched.Debouncer
	interval time.Duration
	log      *slog.Logger

	// onChange is invoked (outside the lock) with the new buffer after
	// every edit; the API layer uses it to push live previews.
	onChange func(string)
}

// Metrics describes the buffer for the status display.
type Metrics struct {
	Lines      int  `json:"lines"`
	Chars      int  `json:"chars"`
	Words      int  `json:"words"`
	CursorLine int  `json:"cursor_line"` // 1-based, 0 when no cursor given
	CursorCol  int  `json:"cursor_col"`
	Dirty      bool `json:"dirty"`
	CanUndo    bool `json:"can_undo"`
	CanRedo    bool `json:"can_redo"`
}

func New(st *store.StateStore, log *slog.Logger, debounce, interval time.Duration, historyDepth int) *Editor {
	return &Editor{
		hist:     newHistory(historyDepth),
		st:       st,
		autosave: sched.NewDebouncer(debounce),
		interval: interval,
		log:      log,
	}
}

// SetOnChange registers the live-preview hook. Must be called before the
// editor starts receiving edits.
func (e *Editor) SetOnChange(fn func(string)) {
	e.onChange = fn
}

// Load restores the persisted buffer, if any. Persistence failures degrade
// to an empty buffer.
func (e *Editor) Load() {
	state, found, err := e.st.EditorBuffer()
	if err != nil {
		e.log.Warn("editor state unavailable", "error", err)
		return
	}
	if !found {
		return
	}
	e.mu.Lock()
	e.buf = state.Content
	e.mu.Unlock()
}

// Content returns the current buffer.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf
}

// Dirty reports whether unsaved edits exist.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// SetContent replaces the buffer, records history, marks the buffer dirty
// and schedules an autosave. Setting identical content is a no-op.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	if content == e.buf {
		e.mu.Unlock()
		return
	}
	e.hist.push(e.buf)
	e.buf = content
	e.dirty = true
	hook := e.onChange
	e.mu.Unlock()

	e.autosave.Trigger(func() { e.saveIfDirty() })
	if hook != nil {
		hook(content)
	}
}

// Undo steps the buffer back one edit. The undone state becomes available
// to Redo. Reports ok=false at the start of history.
func (e *Editor) Undo() (string, bool) {
	e.mu.Lock()
	state, ok := e.hist.undoTo(e.buf)
	if ok {
		e.buf = state
		e.dirty = true
	}
	hook := e.onChange
	buf := e.buf
	e.mu.Unlock()

	if ok {
		e.autosave.Trigger(func() { e.saveIfDirty() })
		if hook != nil {
			hook(buf)
		}
	}
	return buf, ok
}

// Redo reapplies the most recently undone edit.
func (e *Editor) Redo() (string, bool) {
	e.mu.Lock()
	state, ok := e.hist.redoTo(e.buf)
	if ok {
		e.buf = state
		e.dirty = true
	}
	hook := e.onChange
	buf := e.buf
	e.mu.Unlock()

	if ok {
		e.autosave.Trigger(func() { e.saveIfDirty() })
		if hook != nil {
			hook(buf)
		}
	}
	return buf, ok
}

// Save persists the buffer and clears the dirty flag. A persistence failure
// leaves the buffer dirty so a later save retries.
func (e *Editor) Save() error {
	e.mu.Lock()
	content := e.buf
	e.mu.Unlock()

	if err := e.st.SetEditorBuffer(content); err != nil {
		return err
	}

	e.mu.Lock()
	// Only clear dirty if the buffer didn't change while saving.
	if e.buf == content {
		e.dirty = false
	}
	e.mu.Unlock()
	return nil
}

func (e *Editor) saveIfDirty() {
	if !e.Dirty() {
		return
	}
	if err := e.Save(); err != nil {
		e.log.Warn("autosave failed", "error", err)
	}
}

// Run flushes dirty state periodically until ctx is done, then performs a
// final save attempt (the page-unload equivalent).
func (e *Editor) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.Flush()
			return
		case <-ticker.C:
			e.saveIfDirty()
		}
	}
}

// Flush cancels pending autosaves and forces a save when dirty.
func (e *Editor) Flush() {
	e.autosave.Stop()
	e.saveIfDirty()
}

// Metrics computes the status-bar numbers. cursor is a byte offset into the
// buffer; pass a negative value when there is no cursor.
func (e *Editor) Metrics(cursor int) Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := Metrics{
		Lines:   strings.Count(e.buf, "\n") + 1,
		Chars:   len([]rune(e.buf)),
		Words:   len(strings.Fields(e.buf)),
		Dirty:   e.dirty,
		CanUndo: e.hist.canUndo(),
		CanRedo: e.hist.canRedo(),
	}
	if e.buf == "" {
		m.Lines = 0
	}

	if cursor >= 0 {
		if cursor > len(e.buf) {
			cursor = len(e.buf)
		}
		before := e.buf[:cursor]
		m.CursorLine = strings.Count(before, "\n") + 1
		if i := strings.LastIndexByte(before, '\n'); i >= 0 {
			m.CursorCol = len([]rune(before[i+1:])) + 1
		} else {
			m.CursorCol = len([]rune(before)) + 1
		}
	}
	return m
}
