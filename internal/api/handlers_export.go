package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rfinnegan/mdserve/internal/export"
)

// handleExport streams the active document in the requested format. Every
// format refuses with 409 when nothing is loaded.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := s.state.Current()
	if doc == nil {
		jsonError(w, "no content loaded", http.StatusConflict)
		return
	}

	format := chi.URLParam(r, "format")
	theme := r.URL.Query().Get("theme")
	if theme == "" {
		if settings, err := s.st.GetSettings(s.cfg.DefaultTheme); err == nil {
			theme = settings.Theme
		} else {
			theme = s.cfg.DefaultTheme
		}
	}

	var (
		file export.File
		err  error
	)
	switch format {
	case "markdown", "md":
		file = export.Markdown(doc.Source, doc.Title)
	case "text", "txt":
		file, err = export.Text(doc.HTML, doc.Title)
	case "html":
		file = export.HTML(doc.HTML, doc.Title, theme)
	case "word", "doc":
		file = export.Word(doc.HTML, doc.Title)
	case "pdf":
		// PDF is the standalone HTML document; printing it is the final
		// step and happens client-side.
		file = export.HTML(doc.HTML, doc.Title, theme)
	default:
		jsonError(w, fmt.Sprintf("unknown export format %q", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Write(file.Data)
}
