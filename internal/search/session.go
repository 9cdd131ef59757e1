package search

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Session is one search over a rendered document. It keeps the original
// HTML untouched and rebuilds the highlighted view on demand, so clearing
// the query always restores the exact pre-search markup.
//
// A Session is owned by the single controller that owns the document; it is
// invalidated (discarded) whenever the document changes.
type Session struct {
	source  string // rendered HTML before any highlighting
	query   string
	matches []Match
	pos     int // 0-based current match, -1 when there are no matches
}

// NewSession scans rendered HTML for query. An empty query or missing
// content yields a session with zero matches; it never fails on absent
// content.
func NewSession(renderedHTML, query string) (*Session, error) {
	s := &Session{source: renderedHTML, query: query, pos: -1}
	if query == "" || strings.TrimSpace(renderedHTML) == "" {
		return s, nil
	}

	nodes, err := parseBodyFragment(renderedHTML)
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	s.matches = findTextMatches(nodes, query)
	if len(s.matches) > 0 {
		s.pos = 0
	}
	return s, nil
}

// Count returns the number of matches.
func (s *Session) Count() int {
	return len(s.matches)
}

// Current returns the 1-based index of the current match, 0 when there are
// none.
func (s *Session) Current() int {
	if s.pos < 0 {
		return 0
	}
	return s.pos + 1
}

// Counter renders the "current of total" display, e.g. "1 of 2".
func (s *Session) Counter() string {
	return fmt.Sprintf("%d of %d", s.Current(), s.Count())
}

// Next advances the current match, wrapping past the last back to the
// first. No-op when there are no matches.
func (s *Session) Next() {
	if len(s.matches) == 0 {
		return
	}
	s.pos = (s.pos + 1) % len(s.matches)
}

// Prev moves to the previous match, wrapping from the first to the last.
func (s *Session) Prev() {
	if len(s.matches) == 0 {
		return
	}
	s.pos = (s.pos - 1 + len(s.matches)) % len(s.matches)
}

// Anchor returns the element id of the current match marker, for
// scroll-into-view. Empty when there are no matches.
func (s *Session) Anchor() string {
	if s.pos < 0 {
		return ""
	}
	return markID(s.pos)
}

// HTML returns the highlighted document: every match wrapped in a
// <mark class="search-hit"> marker, the current one also carrying the
// "current" class. With no matches it returns the original markup.
func (s *Session) HTML() (string, error) {
	if len(s.matches) == 0 {
		return s.source, nil
	}

	nodes, err := parseBodyFragment(s.source)
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}
	highlight(nodes, s.query, s.pos)

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
	}
	return sb.String(), nil
}

// Clear returns the original, marker-free markup.
func (s *Session) Clear() string {
	return s.source
}

func parseBodyFragment(fragment string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	return html.ParseFragment(strings.NewReader(fragment), body)
}
