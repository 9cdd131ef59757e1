package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rfinnegan/mdserve/internal/config"
	"github.com/rfinnegan/mdserve/internal/document"
	"github.com/rfinnegan/mdserve/internal/editor"
	"github.com/rfinnegan/mdserve/internal/fetch"
	"github.com/rfinnegan/mdserve/internal/render"
	"github.com/rfinnegan/mdserve/internal/share"
	"github.com/rfinnegan/mdserve/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		MaxUploadBytes:   1024,
		MaxImportBytes:   1 << 20,
		RecentLimit:      10,
		RecentTruncate:   1000,
		AutosaveDebounce: 10 * time.Millisecond,
		AutosaveInterval: time.Minute,
		HistoryDepth:     100,
		DefaultTheme:     "light",
		ShareURLWarnLen:  2000,
	}
	st := store.NewStateStore(store.NewMemStore(), cfg.RecentLimit, cfg.RecentTruncate)
	ed := editor.New(st, log, cfg.AutosaveDebounce, cfg.AutosaveInterval, cfg.HistoryDepth)
	return NewServer(
		document.NewState(),
		render.New(""),
		fetch.New(time.Second, nil, log),
		ed, st, log, cfg,
	)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestLoadDocument(t *testing.T) {
	s := newTestServer(t)
	w := postJSON(t, s, "/api/documents", map[string]string{
		"markdown": "# Release Notes\n\nSome *changes*.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["title"] != "Release Notes" {
		t.Errorf("title = %v, want Release Notes", resp["title"])
	}
	if !strings.Contains(resp["html"].(string), "<em>changes</em>") {
		t.Errorf("html missing rendered emphasis: %v", resp["html"])
	}
}

func TestLoadDocument_EmptyRejected(t *testing.T) {
	s := newTestServer(t)
	w := postJSON(t, s, "/api/documents", map[string]string{"markdown": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func multipartRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, multipartRequest(t, "/api/documents/upload", "notes.md", []byte("# Uploaded\n\ntext")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["title"] != "Uploaded" {
		t.Errorf("title = %v, want Uploaded", resp["title"])
	}
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t) // limit is 1 KiB in the test config
	big := bytes.Repeat([]byte("x"), 2048)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, multipartRequest(t, "/api/documents/upload", "big.md", big))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", w.Code, w.Body.String())
	}
}

func TestUpload_TooLargeForBodyReader(t *testing.T) {
	s := newTestServer(t)
	// Big enough to trip the request body reader itself, before the
	// per-file size check runs.
	big := bytes.Repeat([]byte("x"), 2<<20)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, multipartRequest(t, "/api/documents/upload", "huge.md", big))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "exceeds") {
		t.Errorf("expected size-limit message, got %s", w.Body.String())
	}
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, multipartRequest(t, "/api/documents/upload", "report.exe", []byte("MZ")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unsupported file type") {
		t.Errorf("expected unsupported file type message, got %s", w.Body.String())
	}
}

func TestImport_UnsupportedExtension(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, multipartRequest(t, "/api/import", "notes.md", []byte("# md goes through upload")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unsupported import format") {
		t.Errorf("expected unsupported import format message, got %s", w.Body.String())
	}
}

func TestExport_RequiresDocument(t *testing.T) {
	s := newTestServer(t)
	for _, format := range []string{"markdown", "text", "html", "word", "pdf"} {
		req := httptest.NewRequest(http.MethodGet, "/api/export/"+format, nil)
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)
		if w.Code != http.StatusConflict {
			t.Errorf("export %s with no document: status = %d, want 409", format, w.Code)
		}
	}
}

func TestExport_MarkdownByteIdentical(t *testing.T) {
	s := newTestServer(t)
	source := "# Exact\r\n\r\ncontent with trailing spaces   \n"
	postJSON(t, s, "/api/documents", map[string]string{"markdown": source})

	req := httptest.NewRequest(http.MethodGet, "/api/export/markdown", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != source {
		t.Errorf("exported markdown differs from source:\n%q\n%q", w.Body.String(), source)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".md") {
		t.Errorf("Content-Disposition = %q, want .md filename", cd)
	}
}

func TestSearchFlow(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s, "/api/documents", map[string]string{
		"markdown": "Hello World. Hello Markdown.",
	})

	w := postJSON(t, s, "/api/search", map[string]string{"query": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", resp["count"])
	}
	if resp["counter"] != "1 of 2" {
		t.Errorf("counter = %v, want 1 of 2", resp["counter"])
	}
	if !strings.Contains(resp["html"].(string), "search-hit") {
		t.Error("expected highlight markup in html")
	}

	w = postJSON(t, s, "/api/search/next", nil)
	resp = decodeJSON(t, w)
	if resp["counter"] != "2 of 2" {
		t.Errorf("after next, counter = %v, want 2 of 2", resp["counter"])
	}

	// Next again wraps around.
	w = postJSON(t, s, "/api/search/next", nil)
	resp = decodeJSON(t, w)
	if resp["counter"] != "1 of 2" {
		t.Errorf("after wrap, counter = %v, want 1 of 2", resp["counter"])
	}

	// Clearing restores the original rendered markup exactly.
	req := httptest.NewRequest(http.MethodDelete, "/api/search", nil)
	cw := httptest.NewRecorder()
	s.ServeHTTP(cw, req)
	cleared := decodeJSON(t, cw)
	if strings.Contains(cleared["html"].(string), "search-hit") {
		t.Error("cleared html still contains highlights")
	}
	if cleared["html"] != s.state.Current().HTML {
		t.Error("cleared html differs from the original render")
	}
}

func TestSearch_InvalidatedByNewDocument(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s, "/api/documents", map[string]string{"markdown": "alpha beta"})
	postJSON(t, s, "/api/search", map[string]string{"query": "alpha"})

	postJSON(t, s, "/api/documents", map[string]string{"markdown": "gamma delta"})

	w := postJSON(t, s, "/api/search/next", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("navigating a stale session: status = %d, want 409", w.Code)
	}
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	w := postJSON(t, s, "/api/analyze", map[string]string{
		"markdown": "# Title\n\nSome simple words here. More words follow now.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["words"].(float64) <= 0 {
		t.Errorf("words = %v, want > 0", resp["words"])
	}
	headings := resp["headings"].([]any)
	if headings[0].(float64) != 1 {
		t.Errorf("h1 count = %v, want 1", headings[0])
	}
}

func TestAnalyze_NoDocument(t *testing.T) {
	s := newTestServer(t)
	w := postJSON(t, s, "/api/analyze", map[string]string{})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSettings_RoundTripAndValidation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	resp := decodeJSON(t, w)
	if resp["theme"] != "light" {
		t.Errorf("default theme = %v, want light", resp["theme"])
	}

	body, _ := json.Marshal(map[string]string{"theme": "dark", "font_size": "large"})
	preq := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	pw := httptest.NewRecorder()
	s.ServeHTTP(pw, preq)
	if pw.Code != http.StatusOK {
		t.Fatalf("put settings status = %d: %s", pw.Code, pw.Body.String())
	}

	body, _ = json.Marshal(map[string]string{"theme": "neon"})
	preq = httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	pw = httptest.NewRecorder()
	s.ServeHTTP(pw, preq)
	if pw.Code != http.StatusBadRequest {
		t.Errorf("unknown theme: status = %d, want 400", pw.Code)
	}
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s, "/api/documents", map[string]string{"markdown": "# Pinned\n\nbody"})

	req := httptest.NewRequest(http.MethodPut, "/api/favorites/pinned-doc", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("add favorite status = %d: %s", w.Code, w.Body.String())
	}

	lreq := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	lw := httptest.NewRecorder()
	s.ServeHTTP(lw, lreq)
	var list []map[string]any
	if err := json.Unmarshal(lw.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(list) != 1 || list[0]["name"] != "pinned-doc" {
		t.Fatalf("favorites = %v, want one entry pinned-doc", list)
	}
	if list[0]["content"] != "# Pinned\n\nbody" {
		t.Errorf("favorite content truncated or altered: %v", list[0]["content"])
	}

	dreq := httptest.NewRequest(http.MethodDelete, "/api/favorites/pinned-doc", nil)
	dw := httptest.NewRecorder()
	s.ServeHTTP(dw, dreq)
	if dw.Code != http.StatusNoContent {
		t.Errorf("delete favorite status = %d, want 204", dw.Code)
	}
}

func TestShare_RoundTripThroughView(t *testing.T) {
	s := newTestServer(t)
	source := "# Shared\n\nhello from a link"
	postJSON(t, s, "/api/documents", map[string]string{"markdown": source})

	req := httptest.NewRequest(http.MethodGet, "/api/share", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("share status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)

	u, err := url.Parse(resp["url"].(string))
	if err != nil {
		t.Fatalf("share url invalid: %v", err)
	}
	decoded, err := share.Decode(u.Query().Get(share.Param))
	if err != nil {
		t.Fatalf("decode share param: %v", err)
	}
	if decoded != source {
		t.Errorf("round trip = %q, want %q", decoded, source)
	}

	// The viewer accepts the link and renders the document.
	vreq := httptest.NewRequest(http.MethodGet, u.RequestURI(), nil)
	vw := httptest.NewRecorder()
	s.ServeHTTP(vw, vreq)
	if vw.Code != http.StatusOK {
		t.Fatalf("view status = %d", vw.Code)
	}
	if !strings.Contains(vw.Body.String(), "hello from a link") {
		t.Error("view page missing shared content")
	}
}

func TestShare_RequiresDocument(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/share", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestView_BadSharePayload(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/view?doc=%21%21not-base64%21%21", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEditorEndpoints(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"content": "draft one"})
	req := httptest.NewRequest(http.MethodPut, "/api/editor/buffer", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put buffer status = %d", w.Code)
	}

	body, _ = json.Marshal(map[string]string{"content": "draft two"})
	req = httptest.NewRequest(http.MethodPut, "/api/editor/buffer", bytes.NewReader(body))
	s.ServeHTTP(httptest.NewRecorder(), req)

	uw := postJSON(t, s, "/api/editor/undo", nil)
	resp := decodeJSON(t, uw)
	if resp["content"] != "draft one" || resp["applied"] != true {
		t.Errorf("undo = %v", resp)
	}

	mreq := httptest.NewRequest(http.MethodGet, "/api/editor/metrics?cursor=5", nil)
	mw := httptest.NewRecorder()
	s.ServeHTTP(mw, mreq)
	metrics := decodeJSON(t, mw)
	if metrics["words"].(float64) != 2 {
		t.Errorf("words = %v, want 2", metrics["words"])
	}
	if metrics["cursor_line"].(float64) != 1 {
		t.Errorf("cursor_line = %v, want 1", metrics["cursor_line"])
	}
}

func TestTemplateLoad(t *testing.T) {
	s := newTestServer(t)
	w := postJSON(t, s, "/api/editor/templates/readme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(s.editor.Content(), "# Project Name") {
		t.Error("template not loaded into the editor buffer")
	}

	w = postJSON(t, s, "/api/editor/templates/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template: status = %d, want 404", w.Code)
	}
}
