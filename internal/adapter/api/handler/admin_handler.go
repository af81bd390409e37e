package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/response"
	"ecotrack/pkg/utils"
)

type AdminHandler struct {
	adminUseCase  *usecase.AdminUseCase
	ngoUseCase    *usecase.NgoUseCase
	reportUseCase *usecase.ReportUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, ngoUseCase *usecase.NgoUseCase, reportUseCase *usecase.ReportUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase:  adminUseCase,
		ngoUseCase:    ngoUseCase,
		reportUseCase: reportUseCase,
	}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	return h.listUsers(c, entity.Role(c.QueryParam("role")))
}

func (h *AdminHandler) ListNGOs(c echo.Context) error {
	return h.listUsers(c, entity.RoleNGO)
}

func (h *AdminHandler) listUsers(c echo.Context, role entity.Role) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.adminUseCase.ListUsers(c.Request().Context(), actor, role, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, users, total, params.Page, params.PageSize)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.adminUseCase.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "User deleted", nil)
}

func (h *AdminHandler) RemoveNGORole(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.ngoUseCase.RemoveNGORole(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "NGO role removed", user)
}

func (h *AdminHandler) ListReports(c echo.Context) error {
	params := utils.GetPaginationParams(c)
	filter := repository.ReportFilter{
		City:     c.QueryParam("city"),
		Status:   entity.ReportStatus(c.QueryParam("status")),
		PostedBy: c.QueryParam("postedBy"),
		TakenBy:  c.QueryParam("takenBy"),
	}

	reports, total, err := h.reportUseCase.List(c.Request().Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, reports, total, params.Page, params.PageSize)
}

func (h *AdminHandler) DeleteReport(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.reportUseCase.Delete(c.Request().Context(), actor, c.Param("reportId")); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Report deleted", nil)
}

func (h *AdminHandler) ListNgoRequests(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	status := entity.NgoRequestStatus(c.QueryParam("status"))
	requests, total, err := h.ngoUseCase.ListRequests(c.Request().Context(), actor, status, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, requests, total, params.Page, params.PageSize)
}

// ReviewNgoRequest takes {"action": "approve" | "reject"}.
func (h *AdminHandler) ReviewNgoRequest(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req struct {
		Action string `json:"action" validate:"required,oneof=approve reject approved rejected"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	decision := entity.NgoRequestRejected
	if strings.HasPrefix(req.Action, "approve") {
		decision = entity.NgoRequestApproved
	}

	request, err := h.ngoUseCase.Review(c.Request().Context(), actor, c.Param("requestId"), decision)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "NGO request "+string(request.Status), request)
}

func (h *AdminHandler) ListAdminEmails(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	entries, err := h.adminUseCase.ListAdminEmails(c.Request().Context(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, entries)
}

func (h *AdminHandler) AddAdminEmail(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	entry, err := h.adminUseCase.AddAdminEmail(c.Request().Context(), actor, req.Email)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, entry)
}

func (h *AdminHandler) ScannerStatus(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	status, err := h.adminUseCase.ScannerStatus(actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}
