package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/domain/policy"
)

func SetupNgoRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	ngoHandler := handler.GetNgoHandler()

	ngo := e.Group("/api/ngo", authMiddleware.Authenticate)
	ngo.PUT("/take/:reportId", ngoHandler.TakeReport, middleware.RequireAction(policy.ReportClaim))
	ngo.PUT("/complete/:reportId", ngoHandler.CompleteReport, middleware.RequireAction(policy.ReportComplete))
	ngo.GET("/taken/:userId", ngoHandler.ListTaken)
	ngo.GET("/completed/:userId", ngoHandler.ListCompleted)
	ngo.GET("/incompleted/:userId", ngoHandler.ListIncompleted)
}
