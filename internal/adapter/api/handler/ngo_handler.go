package handler

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/response"
	"ecotrack/pkg/utils"
)

type NgoHandler struct {
	ngoUseCase       *usecase.NgoUseCase
	lifecycleUseCase *usecase.ReportLifecycleUseCase
	reportUseCase    *usecase.ReportUseCase
}

func NewNgoHandler(ngoUseCase *usecase.NgoUseCase, lifecycleUseCase *usecase.ReportLifecycleUseCase, reportUseCase *usecase.ReportUseCase) *NgoHandler {
	return &NgoHandler{
		ngoUseCase:       ngoUseCase,
		lifecycleUseCase: lifecycleUseCase,
		reportUseCase:    reportUseCase,
	}
}

// RequestNGO files an NGO application. Multipart with an optional logo.
func (h *NgoHandler) RequestNGO(c echo.Context) error {
	logo, closeLogo, err := formFile(c, "logo")
	if err != nil {
		return response.Error(c, err)
	}
	defer closeLogo()

	request, err := h.ngoUseCase.SubmitRequest(c.Request().Context(), usecase.NgoRequestInput{
		Name:               c.FormValue("name"),
		Email:              c.FormValue("email"),
		RegistrationNumber: c.FormValue("registrationNumber"),
		City:               c.FormValue("city"),
		MobileNumber:       c.FormValue("mobileNumber"),
		Message:            c.FormValue("message"),
		Logo:               logo,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, request)
}

func (h *NgoHandler) TakeReport(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req struct {
		DueDate string `json:"dueDate" form:"dueDate" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return response.Error(c, err)
	}

	report, err := h.lifecycleUseCase.Claim(c.Request().Context(), actor, c.Param("reportId"), dueDate)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Report taken", report)
}

func (h *NgoHandler) CompleteReport(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	images, closeImages, err := formFiles(c, "resolvedImages")
	if err != nil {
		return response.Error(c, err)
	}
	defer closeImages()

	report, err := h.lifecycleUseCase.Complete(c.Request().Context(), actor, c.Param("reportId"), images, c.FormValue("description"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Report marked as completed", report)
}

func (h *NgoHandler) ListTaken(c echo.Context) error {
	return h.list(c, h.reportUseCase.ListTaken)
}

func (h *NgoHandler) ListCompleted(c echo.Context) error {
	return h.list(c, h.reportUseCase.ListCompleted)
}

func (h *NgoHandler) ListIncompleted(c echo.Context) error {
	return h.list(c, h.reportUseCase.ListIncompleted)
}

type ngoListFunc func(ctx context.Context, ngoID string, limit, offset int) ([]*entity.Report, int64, error)

func (h *NgoHandler) list(c echo.Context, fetch ngoListFunc) error {
	params := utils.GetPaginationParams(c)
	reports, total, err := fetch(c.Request().Context(), c.Param("userId"), params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, reports, total, params.Page, params.PageSize)
}

// parseDueDate accepts RFC 3339 timestamps and plain dates (midnight UTC).
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Validation("dueDate must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", nil)
}
