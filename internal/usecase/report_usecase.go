package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
)

const reportPhotoFolder = "reports"

type ReportUseCase struct {
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	limits      UploadLimits
	now         func() time.Time
}

func NewReportUseCase(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	fileService service.FileUploadService,
	limits UploadLimits,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		fileService: fileService,
		limits:      limits,
		now:         time.Now,
	}
}

type CreateReportInput struct {
	Title        string
	Description  string
	Landmark     string
	City         string
	AutoLocation string // raw JSON {"lat":..,"lng":..}, optional
	Photos       []service.FileUpload
}

func (uc *ReportUseCase) Create(ctx context.Context, actor policy.Actor, input CreateReportInput) (*entity.Report, error) {
	if err := policy.Authorize(actor, policy.ReportCreate, nil); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Landmark = strings.TrimSpace(input.Landmark)
	input.City = strings.TrimSpace(input.City)
	if input.Title == "" || input.Description == "" || input.Landmark == "" || input.City == "" {
		return nil, errors.Validation("Title, description, landmark and city are required", nil)
	}
	if len(input.Photos) == 0 {
		return nil, errors.Validation("At least one photo is required", nil)
	}
	if err := validateImages(input.Photos, uc.limits); err != nil {
		return nil, err
	}

	var location *entity.GeoPoint
	if raw := strings.TrimSpace(input.AutoLocation); raw != "" {
		location = &entity.GeoPoint{}
		if err := json.Unmarshal([]byte(raw), location); err != nil {
			return nil, errors.Validation("Invalid autoLocation format", err)
		}
	}

	urls, err := uploadAll(ctx, uc.fileService, input.Photos, reportPhotoFolder)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	report := &entity.Report{
		ID:             uuid.New().String(),
		Title:          input.Title,
		Description:    input.Description,
		Photos:         urls,
		AutoLocation:   location,
		Landmark:       input.Landmark,
		City:           input.City,
		Status:         entity.ReportStatusPending,
		PostedBy:       actor.ID,
		ResolvedImages: []string{},
		IncompletedBy:  []string{},
		Upvotes:        []string{},
		Comments:       []entity.Comment{},
		CommenterIDs:   []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.reportRepo.Create(ctx, report); err != nil {
		discardUploads(ctx, uc.fileService, urls)
		return nil, errors.Internal("Failed to create report", err)
	}

	logger.Info("Report %s created by %s in %s", report.ID, actor.ID, report.City)
	return report, nil
}

// GetByID returns the report with its poster and assignee resolved.
func (uc *ReportUseCase) GetByID(ctx context.Context, reportID string) (*entity.ReportDetail, error) {
	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, loadError(err, "Report")
	}

	detail := &entity.ReportDetail{Report: report}
	if poster, err := uc.userRepo.GetByID(ctx, report.PostedBy); err == nil {
		detail.Poster = poster.Summary()
	}
	if assignee := report.AssignedTo(); assignee != "" {
		if ngo, err := uc.userRepo.GetByID(ctx, assignee); err == nil {
			detail.Assignee = ngo.Summary()
		}
	}
	return detail, nil
}

func (uc *ReportUseCase) List(ctx context.Context, filter repository.ReportFilter, limit, offset int) ([]*entity.Report, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errors.Validation("Invalid status filter", nil)
	}
	return uc.list(ctx, filter, repository.SortByCreatedAt, limit, offset)
}

func (uc *ReportUseCase) ListByPoster(ctx context.Context, userID string, limit, offset int) ([]*entity.Report, int64, error) {
	return uc.list(ctx, repository.ReportFilter{PostedBy: userID}, repository.SortByCreatedAt, limit, offset)
}

// ListByAssignee returns the reports held by ngoID, taken or completed.
func (uc *ReportUseCase) ListByAssignee(ctx context.Context, ngoID string, limit, offset int) ([]*entity.Report, int64, error) {
	return uc.list(ctx, repository.ReportFilter{TakenBy: ngoID}, repository.SortByTakenOn, limit, offset)
}

func (uc *ReportUseCase) ListTaken(ctx context.Context, ngoID string, limit, offset int) ([]*entity.Report, int64, error) {
	filter := repository.ReportFilter{TakenBy: ngoID, Status: entity.ReportStatusTaken}
	return uc.list(ctx, filter, repository.SortByTakenOn, limit, offset)
}

func (uc *ReportUseCase) ListCompleted(ctx context.Context, ngoID string, limit, offset int) ([]*entity.Report, int64, error) {
	filter := repository.ReportFilter{TakenBy: ngoID, Status: entity.ReportStatusCompleted}
	return uc.list(ctx, filter, repository.SortByResolvedOn, limit, offset)
}

func (uc *ReportUseCase) ListIncompleted(ctx context.Context, ngoID string, limit, offset int) ([]*entity.Report, int64, error) {
	return uc.list(ctx, repository.ReportFilter{IncompletedBy: ngoID}, repository.SortByUpdatedAt, limit, offset)
}

func (uc *ReportUseCase) ListUpvotedBy(ctx context.Context, userID string, limit, offset int) ([]*entity.Report, int64, error) {
	return uc.list(ctx, repository.ReportFilter{UpvotedBy: userID}, repository.SortByCreatedAt, limit, offset)
}

func (uc *ReportUseCase) ListCommentedBy(ctx context.Context, userID string, limit, offset int) ([]*entity.Report, int64, error) {
	return uc.list(ctx, repository.ReportFilter{CommentedBy: userID}, repository.SortByCreatedAt, limit, offset)
}

func (uc *ReportUseCase) list(ctx context.Context, filter repository.ReportFilter, sort repository.ReportSort, limit, offset int) ([]*entity.Report, int64, error) {
	reports, total, err := uc.reportRepo.List(ctx, filter, sort, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list reports", err)
	}
	return reports, total, nil
}

func (uc *ReportUseCase) Upvote(ctx context.Context, userID, reportID string) (*entity.Report, error) {
	report, err := uc.reportRepo.Mutate(ctx, reportID, func(r *entity.Report) error {
		if err := r.AddUpvote(userID); err != nil {
			return err
		}
		r.UpdatedAt = uc.now()
		return nil
	})
	return report, uc.mutationError(err)
}

func (uc *ReportUseCase) RemoveUpvote(ctx context.Context, userID, reportID string) (*entity.Report, error) {
	report, err := uc.reportRepo.Mutate(ctx, reportID, func(r *entity.Report) error {
		if err := r.RemoveUpvote(userID); err != nil {
			return err
		}
		r.UpdatedAt = uc.now()
		return nil
	})
	return report, uc.mutationError(err)
}

func (uc *ReportUseCase) Comment(ctx context.Context, userID, reportID, text string) (*entity.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("Comment text is required", nil)
	}

	var comment entity.Comment
	_, err := uc.reportRepo.Mutate(ctx, reportID, func(r *entity.Report) error {
		now := uc.now()
		comment = r.AddComment(userID, text, now)
		r.UpdatedAt = now
		return nil
	})
	if err := uc.mutationError(err); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (uc *ReportUseCase) Delete(ctx context.Context, actor policy.Actor, reportID string) error {
	if err := policy.Authorize(actor, policy.ReportDelete, nil); err != nil {
		return err
	}

	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return loadError(err, "Report")
	}
	if err := uc.reportRepo.Delete(ctx, reportID); err != nil {
		return loadError(err, "Report")
	}

	discardUploads(ctx, uc.fileService, append(append([]string{}, report.Photos...), report.ResolvedImages...))
	logger.Info("Report %s deleted by %s", reportID, actor.ID)
	return nil
}

func (uc *ReportUseCase) mutationError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFound("Report", err)
	case stderrors.Is(err, entity.ErrAlreadyUpvoted), stderrors.Is(err, entity.ErrUpvoteNotFound):
		return errors.Validation(err.Error(), err)
	case stderrors.Is(err, repository.ErrStatusConflict):
		return errors.Conflict("Report was modified concurrently, try again")
	default:
		return errors.Internal("Failed to update report", err)
	}
}
