package api

import (
	"encoding/json"
	"net/http"

	"github.com/rfinnegan/mdserve/internal/search"
)

// invalidateSearch discards the active session. Called on every document
// swap; match indices never outlive a re-render.
func (s *Server) invalidateSearch() {
	s.searchMu.Lock()
	s.session = nil
	s.searchMu.Unlock()
}

// searchResponse serializes the session state. Every navigation re-renders
// the highlighted view from the untouched original, so clearing is always
// an exact restore.
func (s *Server) searchResponse(w http.ResponseWriter, sess *search.Session) {
	html, err := sess.HTML()
	if err != nil {
		jsonError(w, "highlight failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"html":    html,
		"count":   sess.Count(),
		"current": sess.Current(),
		"counter": sess.Counter(),
		"anchor":  sess.Anchor(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc := s.state.Current()
	if doc == nil {
		// Absent content: report zero matches, never an error.
		jsonResponse(w, http.StatusOK, map[string]any{
			"html": "", "count": 0, "current": 0, "counter": "0 of 0", "anchor": "",
		})
		return
	}

	sess, err := search.NewSession(doc.HTML, req.Query)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.searchMu.Lock()
	s.session = sess
	s.searchMu.Unlock()

	s.searchResponse(w, sess)
}

func (s *Server) handleSearchNext(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, func(sess *search.Session) { sess.Next() })
}

func (s *Server) handleSearchPrev(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, func(sess *search.Session) { sess.Prev() })
}

func (s *Server) navigate(w http.ResponseWriter, move func(*search.Session)) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	if s.session == nil {
		jsonError(w, "no active search", http.StatusConflict)
		return
	}
	move(s.session)
	s.searchResponse(w, s.session)
}

func (s *Server) handleSearchClear(w http.ResponseWriter, r *http.Request) {
	s.searchMu.Lock()
	sess := s.session
	s.session = nil
	s.searchMu.Unlock()

	html := ""
	if sess != nil {
		html = sess.Clear()
	} else if doc := s.state.Current(); doc != nil {
		html = doc.HTML
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"html": html, "count": 0, "current": 0, "counter": "0 of 0", "anchor": "",
	})
}
