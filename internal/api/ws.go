package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rfinnegan/mdserve/internal/document"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// previewHub fans rendered editor previews out to connected sockets.
type previewHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   *slog.Logger
}

func newPreviewHub(log *slog.Logger) *previewHub {
	return &previewHub{
		conns: make(map[*websocket.Conn]bool),
		log:   log,
	}
}

func (h *previewHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	h.log.Info("preview client connected", "clients", count)
}

func (h *previewHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	count := len(h.conns)
	h.mu.Unlock()
	conn.Close()
	h.log.Info("preview client disconnected", "clients", count)
}

// broadcast sends the payload to every client, dropping connections whose
// writes fail.
func (h *previewHub) broadcast(payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.log.Warn("preview write failed", "error", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (s *Server) handlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.hub.register(conn)

	// The server only pushes; drain reads until the client goes away so
	// close frames and pings are processed.
	go func() {
		defer s.hub.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Seed the new client with the current buffer.
	if content := s.editor.Content(); content != "" {
		s.broadcastPreview(content)
	}
}

// broadcastPreview renders the editor buffer and pushes it to preview
// clients. Wired as the editor's change hook; render errors surface as the
// placeholder so the preview never goes blank on a half-typed code fence.
func (s *Server) broadcastPreview(markdown string) {
	html, err := s.renderer.Render(markdown)
	if err != nil {
		s.log.Warn("preview render failed", "error", err)
		html = "" // keep the last good preview on the client
	}
	if html == "" && markdown != "" {
		return
	}
	s.hub.broadcast(map[string]any{
		"html":  html,
		"title": document.DeriveTitle(markdown),
	})
}
