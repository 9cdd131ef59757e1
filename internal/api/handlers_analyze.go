package api

import (
	"encoding/json"
	"net/http"

	"github.com/rfinnegan/mdserve/internal/analyze"
)

// handleAnalyze scores markdown for structure, readability and the
// composite rating. The body may carry explicit markdown; otherwise the
// active document is analyzed.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if r.Body != nil {
		// An empty body is fine; it means "analyze the current document".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	source := req.Markdown
	if source == "" {
		doc := s.state.Current()
		if doc == nil {
			jsonError(w, "no content loaded", http.StatusConflict)
			return
		}
		source = doc.Source
	}

	jsonResponse(w, http.StatusOK, analyze.Analyze(source))
}
