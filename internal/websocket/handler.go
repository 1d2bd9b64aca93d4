package websocket

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"eduboard/internal/config"
	"eduboard/internal/infrastructure"
)

// Handler upgrades HTTP requests and attaches the connection to a Hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	timing   Timing
	origins  map[string]bool
	anyOrig  bool
	logger   *slog.Logger
}

// NewHandler builds the upgrade handler. Origins are checked against the
// CORS allow-list; "*" or development logging lifts the check.
func NewHandler(hub *Hub, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:     hub,
		timing:  TimingFromConfig(cfg.WebSocket),
		origins: make(map[string]bool, len(cfg.Security.AllowedOrigins)),
		anyOrig: cfg.Logging.Development,
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	for _, o := range cfg.Security.AllowedOrigins {
		if o == "*" {
			h.anyOrig = true
		}
		h.origins[o] = true
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Same-origin and non-browser clients send no Origin.
	if origin == "" || h.anyOrig || h.origins[origin] {
		return true
	}
	h.logger.WarnContext(r.Context(), "websocket origin not allowed",
		slog.String("origin", origin))
	return false
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = uuid.New().String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := NewClient(h.hub, conn, traceID, h.timing, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
