package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/domain/policy"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/api/admin", authMiddleware.Authenticate)

	users := admin.Group("", middleware.RequireAction(policy.UserManage))
	users.GET("/users", adminHandler.ListUsers)
	users.GET("/ngos", adminHandler.ListNGOs)
	users.DELETE("/users/:id", adminHandler.DeleteUser)
	users.PUT("/remove-ngo-role/:id", adminHandler.RemoveNGORole)
	users.GET("/admin-emails", adminHandler.ListAdminEmails)
	users.POST("/admin-emails", adminHandler.AddAdminEmail)

	reports := admin.Group("/reports", middleware.RequireAction(policy.ReportDelete))
	reports.GET("", adminHandler.ListReports)
	reports.DELETE("/:reportId", adminHandler.DeleteReport)

	requests := admin.Group("/ngo-requests", middleware.RequireAction(policy.NgoModerate))
	requests.GET("", adminHandler.ListNgoRequests)
	requests.PUT("/:requestId", adminHandler.ReviewNgoRequest)

	admin.GET("/scanner/status", adminHandler.ScannerStatus, middleware.RequireAction(policy.ScannerInspect))
}
