package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rfinnegan/mdserve/internal/editor"
)

func (s *Server) handleEditorGet(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"content": s.editor.Content(),
		"dirty":   s.editor.Dirty(),
	})
}

func (s *Server) handleEditorPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.editor.SetContent(req.Content)
	jsonResponse(w, http.StatusOK, map[string]any{"dirty": s.editor.Dirty()})
}

func (s *Server) handleEditorUndo(w http.ResponseWriter, r *http.Request) {
	content, ok := s.editor.Undo()
	jsonResponse(w, http.StatusOK, map[string]any{
		"content": content,
		"applied": ok,
	})
}

func (s *Server) handleEditorRedo(w http.ResponseWriter, r *http.Request) {
	content, ok := s.editor.Redo()
	jsonResponse(w, http.StatusOK, map[string]any{
		"content": content,
		"applied": ok,
	})
}

func (s *Server) handleEditorMetrics(w http.ResponseWriter, r *http.Request) {
	cursor := -1
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "cursor must be an integer", http.StatusBadRequest)
			return
		}
		cursor = n
	}
	jsonResponse(w, http.StatusOK, s.editor.Metrics(cursor))
}

func (s *Server) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, editor.Templates())
}

// handleTemplateLoad replaces the editor buffer with the named template.
// The previous buffer stays reachable through undo.
func (s *Server) handleTemplateLoad(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tpl, err := editor.TemplateByName(name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	s.editor.SetContent(tpl.Content)
	jsonResponse(w, http.StatusOK, map[string]any{
		"name":    tpl.Name,
		"content": tpl.Content,
	})
}
