package ws

import (
	"draw-lab/domain/drawing"
	"draw-lab/services"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type Handler struct {
	log        *slog.Logger
	service    services.IBoardService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, service services.IBoardService, bufferSize int) *Handler {
	return &Handler{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

// Connect upgrades the request and serves the session until it leaves.
// Every connection gets a fresh session id.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	sessionID := uuid.NewString()
	h.log.Info("Session connected", "session", sessionID, "remote", r.RemoteAddr)
	NewSession(sessionID, h.log, conn, h.service, h.bufferSize).Serve(r.Context())
}

func (h *Handler) Board(w http.ResponseWriter, _ *http.Request) {
	doc := h.service.Snapshot()
	view := BoardView{Version: doc.Version, Strokes: doc.Strokes}
	if view.Strokes == nil {
		view.Strokes = []drawing.Stroke{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.log.Error("Failed to write board", "error", err)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func NewRouter(log *slog.Logger, h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			log.Debug("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})
	r.Methods(http.MethodGet).Path("/ws").HandlerFunc(h.Connect)
	r.Methods(http.MethodGet).Path("/board").HandlerFunc(h.Board)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(h.Healthz)
	return r
}
