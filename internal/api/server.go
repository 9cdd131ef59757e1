package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rfinnegan/mdserve/internal/config"
	"github.com/rfinnegan/mdserve/internal/document"
	"github.com/rfinnegan/mdserve/internal/editor"
	"github.com/rfinnegan/mdserve/internal/fetch"
	"github.com/rfinnegan/mdserve/internal/render"
	"github.com/rfinnegan/mdserve/internal/search"
	"github.com/rfinnegan/mdserve/internal/store"
)

// Server is the HTTP API for the markdown viewer/editor.
type Server struct {
	router chi.Router

	state    *document.State
	renderer *render.Renderer
	fetcher  *fetch.Fetcher
	editor   *editor.Editor
	st       *store.StateStore
	hub      *previewHub
	log      *slog.Logger
	cfg      config.Config

	// searchMu guards the active search session; it is discarded whenever
	// the document changes.
	searchMu sync.Mutex
	session  *search.Session
}

// NewServer wires the application together behind a chi router.
func NewServer(state *document.State, renderer *render.Renderer, fetcher *fetch.Fetcher,
	ed *editor.Editor, st *store.StateStore, log *slog.Logger, cfg config.Config) *Server {

	s := &Server{
		state:    state,
		renderer: renderer,
		fetcher:  fetcher,
		editor:   ed,
		st:       st,
		hub:      newPreviewHub(log),
		log:      log,
		cfg:      cfg,
	}
	ed.SetOnChange(s.broadcastPreview)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/view", s.handleView)
	r.Get("/ws/preview", s.handlePreviewSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", s.handleLoadDocument)
		r.Post("/documents/upload", s.handleUpload)
		r.Post("/documents/fetch", s.handleFetchURL)
		r.Get("/documents/current", s.handleCurrentDocument)

		r.Post("/search", s.handleSearch)
		r.Post("/search/next", s.handleSearchNext)
		r.Post("/search/prev", s.handleSearchPrev)
		r.Delete("/search", s.handleSearchClear)

		r.Get("/export/{format}", s.handleExport)

		r.Post("/analyze", s.handleAnalyze)

		r.Post("/import", s.handleImport)

		r.Get("/editor/buffer", s.handleEditorGet)
		r.Put("/editor/buffer", s.handleEditorPut)
		r.Post("/editor/undo", s.handleEditorUndo)
		r.Post("/editor/redo", s.handleEditorRedo)
		r.Get("/editor/metrics", s.handleEditorMetrics)
		r.Get("/editor/templates", s.handleTemplateList)
		r.Post("/editor/templates/{name}", s.handleTemplateLoad)

		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsPut)
		r.Get("/recent", s.handleRecents)
		r.Get("/favorites", s.handleFavoriteList)
		r.Put("/favorites/{name}", s.handleFavoriteAdd)
		r.Delete("/favorites/{name}", s.handleFavoriteRemove)

		r.Get("/share", s.handleShare)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
