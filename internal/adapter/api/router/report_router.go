package router

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/handler"
	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/domain/policy"
)

func SetupReportRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reportHandler := handler.GetReportHandler()

	// Browsing the public feed needs no account.
	e.GET("/api/reports", reportHandler.ListReports)

	reports := e.Group("/api/reports", authMiddleware.Authenticate)
	reports.POST("", reportHandler.CreateReport, middleware.RequireAction(policy.ReportCreate))
	reports.GET("/mine", reportHandler.ListMine)
	reports.GET("/upvoted", reportHandler.ListUpvoted)
	reports.GET("/commented", reportHandler.ListCommented)
	reports.GET("/by/:userId", reportHandler.ListByUser)
	reports.GET("/taken-by/:userId", reportHandler.ListTakenBy)
	reports.GET("/:reportId", reportHandler.GetReport)
	reports.POST("/:reportId/upvote", reportHandler.Upvote)
	reports.DELETE("/:reportId/upvote", reportHandler.RemoveUpvote)
	reports.POST("/:reportId/comments", reportHandler.AddComment)
}
