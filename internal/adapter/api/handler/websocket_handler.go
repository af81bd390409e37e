package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "ecotrack/internal/infrastructure/websocket"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" or an empty
// list allows any origin.
func NewWebSocketHandler(wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket upgrades an authenticated request into a live report feed.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn("websocket upgrade for %s failed: %v", actor.ID, err)
		return nil
	}

	client := ws.NewClient(actor.ID, conn)
	if !h.wsManager.Add(client) {
		conn.Close()
		return response.Error(c, errors.New("SERVICE_UNAVAILABLE", "Live feed is shutting down", http.StatusServiceUnavailable, nil))
	}

	go client.WritePump()
	go client.ReadPump(h.wsManager)
	return nil
}
