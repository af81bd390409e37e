package handler

import (
	"github.com/labstack/echo/v4"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/response"
	"ecotrack/pkg/utils"
)

type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

// CreateReport takes multipart fields title, description, landmark, city,
// autoLocation (JSON {"lat","lng"}) and up to five photos.
func (h *ReportHandler) CreateReport(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	photos, closePhotos, err := formFiles(c, "photos")
	if err != nil {
		return response.Error(c, err)
	}
	defer closePhotos()

	report, err := h.reportUseCase.Create(c.Request().Context(), actor, usecase.CreateReportInput{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		Landmark:     c.FormValue("landmark"),
		City:         c.FormValue("city"),
		AutoLocation: c.FormValue("autoLocation"),
		Photos:       photos,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, report)
}

func (h *ReportHandler) ListReports(c echo.Context) error {
	filter := repository.ReportFilter{
		City:   c.QueryParam("city"),
		Status: entity.ReportStatus(c.QueryParam("status")),
	}
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.List(c.Request().Context(), filter, limit, offset)
	})
}

func (h *ReportHandler) GetReport(c echo.Context) error {
	detail, err := h.reportUseCase.GetByID(c.Request().Context(), c.Param("reportId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

func (h *ReportHandler) ListByUser(c echo.Context) error {
	userID := c.Param("userId")
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.ListByPoster(c.Request().Context(), userID, limit, offset)
	})
}

func (h *ReportHandler) ListTakenBy(c echo.Context) error {
	userID := c.Param("userId")
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.ListByAssignee(c.Request().Context(), userID, limit, offset)
	})
}

func (h *ReportHandler) ListMine(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.ListByPoster(c.Request().Context(), actor.ID, limit, offset)
	})
}

func (h *ReportHandler) ListUpvoted(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.ListUpvotedBy(c.Request().Context(), actor.ID, limit, offset)
	})
}

func (h *ReportHandler) ListCommented(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}
	return h.paginated(c, func(limit, offset int) ([]*entity.Report, int64, error) {
		return h.reportUseCase.ListCommentedBy(c.Request().Context(), actor.ID, limit, offset)
	})
}

func (h *ReportHandler) Upvote(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.Upvote(c.Request().Context(), actor.ID, c.Param("reportId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Upvoted", upvoteSummary(report))
}

func (h *ReportHandler) RemoveUpvote(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.RemoveUpvote(c.Request().Context(), actor.ID, c.Param("reportId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Upvote removed", upvoteSummary(report))
}

func (h *ReportHandler) AddComment(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req struct {
		Text string `json:"text" form:"text" validate:"required,max=1000"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	comment, err := h.reportUseCase.Comment(c.Request().Context(), actor.ID, c.Param("reportId"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, comment)
}

func (h *ReportHandler) paginated(c echo.Context, fetch func(limit, offset int) ([]*entity.Report, int64, error)) error {
	params := utils.GetPaginationParams(c)
	reports, total, err := fetch(params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, reports, total, params.Page, params.PageSize)
}

func upvoteSummary(report *entity.Report) map[string]interface{} {
	return map[string]interface{}{
		"reportId": report.ID,
		"upvotes":  len(report.Upvotes),
	}
}
