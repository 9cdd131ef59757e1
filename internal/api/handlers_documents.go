package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rfinnegan/mdserve/internal/document"
	"github.com/rfinnegan/mdserve/internal/fetch"
	"github.com/rfinnegan/mdserve/internal/render"
)

// uploadExtensions are the formats the regular document upload accepts.
// Everything else goes through /api/import.
var uploadExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// loadDocument renders source and swaps it in as the active document,
// invalidating any search session and recording viewer state. Render
// failures produce a document carrying the error placeholder; the page
// stays usable.
func (s *Server) loadDocument(source, name, origin string) *document.Document {
	title := document.DeriveTitle(source)
	if title == "Untitled" && name != "" {
		title = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(name, ".txt"), ".markdown"), ".md")
	}

	html, err := s.renderer.Render(source)
	if err != nil {
		s.log.Warn("render failed", "origin", origin, "error", err)
		html = render.ErrorPlaceholder()
	}

	doc := &document.Document{
		Source:   source,
		Title:    title,
		HTML:     html,
		Origin:   origin,
		LoadedAt: time.Now(),
	}
	s.state.Swap(doc)
	s.invalidateSearch()

	// Persistence is best-effort; the viewer works without it.
	if err := s.st.SetLastDoc(source, title); err != nil {
		s.log.Warn("persist last document failed", "error", err)
	}
	recentName := name
	if recentName == "" {
		recentName = title
	}
	if err := s.st.AddRecent(recentName, source); err != nil {
		s.log.Warn("record recent failed", "error", err)
	}
	return doc
}

func (s *Server) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markdown string `json:"markdown"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	doc := s.loadDocument(req.Markdown, req.Name, "text")
	jsonResponse(w, http.StatusOK, map[string]any{
		"title": doc.Title,
		"html":  doc.HTML,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxUploadBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
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
	ext := strings.ToLower(filepath.Ext(filename))
	if !uploadExtensions[ext] {
		jsonError(w, fmt.Sprintf("unsupported file type %s: use .md, .markdown or .txt", ext), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxUploadBytes/(1024*1024)), http.StatusRequestEntityTooLarge)
		return
	}

	doc := s.loadDocument(string(data), filename, "upload")
	jsonResponse(w, http.StatusOK, map[string]any{
		"title": doc.Title,
		"html":  doc.HTML,
		"name":  filename,
	})
}

func (s *Server) handleFetchURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	content, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		cat := fetch.Classify(err)
		jsonErrorCategory(w, err.Error(), string(cat), fetch.Guidance(cat), fetchStatus(cat))
		return
	}

	doc := s.loadDocument(content, urlBasename(req.URL), "url")
	jsonResponse(w, http.StatusOK, map[string]any{
		"title": doc.Title,
		"html":  doc.HTML,
	})
}

func fetchStatus(cat fetch.Category) int {
	switch cat {
	case fetch.CategoryNotFound:
		return http.StatusNotFound
	case fetch.CategoryForbidden:
		return http.StatusForbidden
	case fetch.CategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleCurrentDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.state.Current()
	if doc == nil {
		jsonError(w, "no document loaded", http.StatusNotFound)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"title":     doc.Title,
		"markdown":  doc.Source,
		"html":      doc.HTML,
		"origin":    doc.Origin,
		"loaded_at": doc.LoadedAt,
	})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

func urlBasename(raw string) string {
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndexByte(raw, '/'); i >= 0 && i+1 < len(raw) {
		if base := raw[i+1:]; base != "" {
			return base
		}
	}
	return raw
}
