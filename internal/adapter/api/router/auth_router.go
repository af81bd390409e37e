package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	authHandler := handler.GetAuthHandler()
	ngoHandler := handler.GetNgoHandler()

	public := e.Group("/api/auth")
	public.POST("/register", authHandler.Register, middleware.RateLimit(limiter, ActionRegister))
	public.POST("/login", authHandler.Login, middleware.RateLimit(limiter, ActionLogin))
	public.POST("/logout", authHandler.Logout)
	public.POST("/send-otp", authHandler.SendOTP, middleware.RateLimit(limiter, ActionSendOTP))
	public.POST("/reset-password", authHandler.ResetPassword, middleware.RateLimit(limiter, ActionResetPassword))
	public.POST("/request-ngo", ngoHandler.RequestNGO, middleware.RateLimit(limiter, ActionRequestNGO))
	public.POST("/firebase", authHandler.FirebaseLogin, middleware.RateLimit(limiter, ActionLogin))
	public.GET("/google", authHandler.GoogleLogin)
	public.GET("/google/callback", authHandler.GoogleCallback)

	protected := e.Group("/api/auth", authMiddleware.Authenticate)
	protected.GET("/me", authHandler.Me)
	protected.POST("/set-password", authHandler.SetPassword)
}
