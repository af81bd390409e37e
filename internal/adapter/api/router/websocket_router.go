package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
)

// SetupWebSocketRouter mounts the live report feed. Browsers send the session
// cookie on the upgrade request, so the regular auth middleware applies.
func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws/reports", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}
