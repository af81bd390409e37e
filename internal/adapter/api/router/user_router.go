package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/domain/policy"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/api/user", authMiddleware.Authenticate)
	users.POST("/create-profile", userHandler.CreateProfile)
	users.PUT("/update-profile", userHandler.UpdateProfile, middleware.RequireAction(policy.ProfileUpdate))
	users.GET("/me", userHandler.GetMe)
	users.GET("/:userId", userHandler.GetUserByID)
}
