package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rfinnegan/mdserve/internal/importer"
)

// handleImport converts an uploaded PDF, DOCX, HTML or CSV file to markdown
// and places the result in the editor buffer for review before loading.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxImportBytes+1024*1024)

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("file exceeds the %d MB import limit", s.cfg.MaxImportBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported import format %s: use .pdf, .docx, .html or .csv",
			filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if header.Size > s.cfg.MaxImportBytes {
		jsonError(w, fmt.Sprintf("file exceeds the %d MB import limit", s.cfg.MaxImportBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
		return
	}

	markdown, err := imp.Extract(file, filename)
	if err != nil {
		s.log.Warn("import failed", "file", filename, "error", err)
		jsonError(w, "could not convert file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(markdown) == "" {
		jsonError(w, "no text could be extracted from the file", http.StatusUnprocessableEntity)
		return
	}

	s.editor.SetContent(markdown)
	jsonResponse(w, http.StatusOK, map[string]any{
		"markdown": markdown,
		"name":     filename,
	})
}
