package api

import (
	"html"
	"net/http"

	"github.com/rfinnegan/mdserve/internal/export"
	"github.com/rfinnegan/mdserve/internal/share"
)

// handleView serves the reader page. With a share parameter the encoded
// document is decoded, loaded as the active document and rendered; without
// one the current (or last persisted) document is shown.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	theme := s.cfg.DefaultTheme
	if settings, err := s.st.GetSettings(s.cfg.DefaultTheme); err == nil {
		theme = settings.Theme
	}

	if encoded := r.URL.Query().Get(share.Param); encoded != "" {
		markdown, err := share.Decode(encoded)
		if err != nil {
			s.viewError(w, "This share link is damaged or incomplete.", err)
			return
		}
		doc := s.loadDocument(markdown, "", "share")
		s.servePage(w, export.HTML(doc.HTML, doc.Title, theme))
		return
	}

	if doc := s.state.Current(); doc != nil {
		s.servePage(w, export.HTML(doc.HTML, doc.Title, theme))
		return
	}

	// Cold start: fall back to the last persisted document.
	if last, found, err := s.st.LastDoc(); err == nil && found {
		doc := s.loadDocument(last.Markdown, last.Title, "restored")
		s.servePage(w, export.HTML(doc.HTML, doc.Title, theme))
		return
	}

	s.servePage(w, export.HTML(
		`<div class="empty-state"><p>No document loaded. Paste markdown, upload a file or fetch a URL to get started.</p></div>`,
		"mdserve", theme))
}

func (s *Server) servePage(w http.ResponseWriter, page export.File) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page.Data)
}

func (s *Server) viewError(w http.ResponseWriter, msg string, err error) {
	s.log.Warn("view failed", "error", err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte("<!DOCTYPE html><html><body><p>" + html.EscapeString(msg) + "</p></body></html>"))
}
