package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rfinnegan/mdserve/internal/config"
	"github.com/rfinnegan/mdserve/internal/share"
	"github.com/rfinnegan/mdserve/internal/store"
)

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.st.GetSettings(s.cfg.DefaultTheme)
	if err != nil {
		s.log.Warn("settings unavailable, serving defaults", "error", err)
	}
	jsonResponse(w, http.StatusOK, settings)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if settings.Theme != "" && !config.KnownTheme(settings.Theme) {
		jsonError(w, fmt.Sprintf("unknown theme %q", settings.Theme), http.StatusBadRequest)
		return
	}
	if settings.Theme == "" {
		settings.Theme = s.cfg.DefaultTheme
	}

	if err := s.st.SetSettings(settings); err != nil {
		jsonError(w, "persist settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

func (s *Server) handleRecents(w http.ResponseWriter, r *http.Request) {
	list, err := s.st.Recents()
	if err != nil {
		jsonError(w, "load recents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.RecentFile{}
	}
	jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleFavoriteList(w http.ResponseWriter, r *http.Request) {
	list, err := s.st.Favorites()
	if err != nil {
		jsonError(w, "load favorites: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.Favorite{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// handleFavoriteAdd pins the active document under the given name. Unlike
// recents, favorites keep full content.
func (s *Server) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		jsonError(w, "favorite name is required", http.StatusBadRequest)
		return
	}

	doc := s.state.Current()
	if doc == nil {
		jsonError(w, "no content loaded", http.StatusConflict)
		return
	}

	if err := s.st.AddFavorite(name, doc.Source); err != nil {
		jsonError(w, "persist favorite: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"name": name})
}

func (s *Server) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.st.RemoveFavorite(name); err != nil {
		jsonError(w, "remove favorite: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleShare builds a share link carrying the active document in the URL.
// Long links still work; the response flags them so the client can warn.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	doc := s.state.Current()
	if doc == nil {
		jsonError(w, "no content loaded", http.StatusConflict)
		return
	}

	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}

	jsonResponse(w, http.StatusOK, share.Build(base, doc.Source, s.cfg.ShareURLWarnLen))
}
