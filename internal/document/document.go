package document

import (
	"strings"
	"sync"
	"time"
)

// Document is the active markdown source together with everything derived
// from it. A Document is immutable once built; loading new content replaces
// the whole value.
type Document struct {
	Source   string
	Title    string
	HTML     string
	Origin   string // "text", "upload", "url", "share", "editor", "import"
	LoadedAt time.Time
}

// State owns the single active document. Handlers swap whole documents in
// and out; nothing mutates a Document after it is published.
type State struct {
	mu  sync.RWMutex
	doc *Document
}

func NewState() *State {
	return &State{}
}

// Swap replaces the active document and returns the previous one (nil if
// none was loaded).
func (s *State) Swap(doc *Document) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.doc
	s.doc = doc
	return prev
}

// Current returns the active document, or nil if nothing is loaded.
func (s *State) Current() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

const maxFallbackTitle = 80

// DeriveTitle extracts a display title from markdown source: the first ATX
// heading if one exists, otherwise the first non-empty line (truncated),
// otherwise "Untitled".
func DeriveTitle(source string) string {
	fallback := ""
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if title := atxHeadingText(line); title != "" {
			return title
		}
		if fallback == "" {
			fallback = line
		}
	}
	if fallback == "" {
		return "Untitled"
	}
	runes := []rune(fallback)
	if len(runes) > maxFallbackTitle {
		fallback = string(runes[:maxFallbackTitle])
	}
	return fallback
}

// atxHeadingText returns the text of an ATX heading line, or "" if the line
// is not a heading.
func atxHeadingText(line string) string {
	if !strings.HasPrefix(line, "#") {
		return ""
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 || level == len(line) || line[level] != ' ' {
		return ""
	}
	text := strings.TrimSpace(line[level:])
	// Closing hashes are allowed in ATX headings.
	text = strings.TrimRight(text, "#")
	return strings.TrimSpace(text)
}
