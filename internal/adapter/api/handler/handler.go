package handler

import (
	"ecotrack/internal/infrastructure/oauth"
	"ecotrack/internal/usecase"
)

var (
	authHandler   *AuthHandler
	userHandler   *UserHandler
	reportHandler *ReportHandler
	ngoHandler    *NgoHandler
	adminHandler  *AdminHandler
)

// Dependencies are the use cases and settings the HTTP handlers are built from.
type Dependencies struct {
	Auth      *usecase.AuthUseCase
	Users     *usecase.UserUseCase
	Reports   *usecase.ReportUseCase
	Lifecycle *usecase.ReportLifecycleUseCase
	Ngos      *usecase.NgoUseCase
	Admin     *usecase.AdminUseCase
	Google    *oauth.GoogleProvider
	Cookies   CookieConfig
}

func Setup(deps Dependencies) {
	authHandler = NewAuthHandler(deps.Auth, deps.Google, deps.Cookies)
	userHandler = NewUserHandler(deps.Users)
	reportHandler = NewReportHandler(deps.Reports)
	ngoHandler = NewNgoHandler(deps.Ngos, deps.Lifecycle, deps.Reports)
	adminHandler = NewAdminHandler(deps.Admin, deps.Ngos, deps.Reports)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetReportHandler() *ReportHandler {
	return reportHandler
}

func GetNgoHandler() *NgoHandler {
	return ngoHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}
