package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/infrastructure/ratelimit"
)

// Rate-limited actions, keyed per client IP.
const (
	ActionLogin         = "login"
	ActionRegister      = "register"
	ActionSendOTP       = "send-otp"
	ActionResetPassword = "reset-password"
	ActionRequestNGO    = "request-ngo"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, wsHandler *handler.WebSocketHandler) {
	SetupHealthRouter(e)
	SetupAuthRouter(e, authMiddleware, limiter)
	SetupUserRouter(e, authMiddleware)
	SetupReportRouter(e, authMiddleware)
	SetupNgoRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware)
	SetupWebSocketRouter(e, authMiddleware, wsHandler)
}
