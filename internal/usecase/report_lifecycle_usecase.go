package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/metrics"
)

const resolutionFolder = "resolutions"

// ReportLifecycleUseCase owns every status change of a report:
// pending -> taken -> completed, and taken -> pending for overdue reports.
type ReportLifecycleUseCase struct {
	reportRepo  repository.ReportRepository
	fileService service.FileUploadService
	events      EventPublisher
	limits      UploadLimits
	now         func() time.Time
}

func NewReportLifecycleUseCase(
	reportRepo repository.ReportRepository,
	fileService service.FileUploadService,
	events EventPublisher,
	limits UploadLimits,
) *ReportLifecycleUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &ReportLifecycleUseCase{
		reportRepo:  reportRepo,
		fileService: fileService,
		events:      events,
		limits:      limits,
		now:         time.Now,
	}
}

// Claim assigns a pending report to the calling NGO until dueDate.
func (uc *ReportLifecycleUseCase) Claim(ctx context.Context, actor policy.Actor, reportID string, dueDate time.Time) (*entity.Report, error) {
	if err := policy.Authorize(actor, policy.ReportClaim, nil); err != nil {
		return nil, err
	}

	now := uc.now()
	if !dueDate.After(now) {
		return nil, errors.Validation("Due date must be in the future", entity.ErrDueDateNotInFuture)
	}

	report, err := uc.transition(ctx, reportID, entity.ReportStatusPending, func(r *entity.Report) error {
		return r.Claim(actor.ID, now, dueDate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Report %s claimed by %s until %s", report.ID, actor.ID, dueDate.Format(time.RFC3339))
	uc.events.Publish(ctx, entity.DomainEvent{
		Type:       entity.EventReportClaimed,
		Report:     report.Clone(),
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return report, nil
}

// Complete resolves a taken report. Only the assigned NGO may complete it and
// at least one resolution image is required.
func (uc *ReportLifecycleUseCase) Complete(ctx context.Context, actor policy.Actor, reportID string, images []service.FileUpload, description string) (*entity.Report, error) {
	if len(images) == 0 {
		return nil, errors.Validation("At least one resolved image is required", entity.ErrNoResolutionImages)
	}
	if err := validateImages(images, uc.limits); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ReportComplete, nil); err != nil {
		return nil, err
	}

	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, loadError(err, "Report")
	}

	if err := policy.Authorize(actor, policy.ReportComplete, report); err != nil {
		return nil, errors.Forbidden("You are not allowed to complete this report", entity.ErrNotAssignee)
	}
	if report.Status != entity.ReportStatusTaken {
		return nil, errors.InvalidState("Only taken reports can be completed", entity.ErrInvalidTransition)
	}

	urls, err := uploadAll(ctx, uc.fileService, images, resolutionFolder)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	report, err = uc.transition(ctx, reportID, entity.ReportStatusTaken, func(r *entity.Report) error {
		return r.Complete(actor.ID, urls, description, now)
	})
	if err != nil {
		discardUploads(ctx, uc.fileService, urls)
		return nil, err
	}

	logger.Info("Report %s completed by %s with %d images", report.ID, actor.ID, len(urls))
	uc.events.Publish(ctx, entity.DomainEvent{
		Type:       entity.EventReportCompleted,
		Report:     report.Clone(),
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return report, nil
}

// revert is the system-only taken -> pending transition used by the overdue
// scanner. A report that is no longer overdue when it is reloaded is left
// alone. It returns the reverted report, the NGO that missed the deadline and
// the deadline itself.
func (uc *ReportLifecycleUseCase) revert(ctx context.Context, reportID string, now time.Time) (*entity.Report, string, *time.Time, error) {
	var (
		previous string
		dueDate  *time.Time
	)
	report, err := uc.transition(ctx, reportID, entity.ReportStatusTaken, func(r *entity.Report) error {
		if !r.IsOverdue(now) {
			return repository.ErrStatusConflict
		}
		if r.DueDate != nil {
			d := *r.DueDate
			dueDate = &d
		}
		var err error
		previous, err = r.Revert(now)
		return err
	})
	if err != nil {
		return nil, "", nil, err
	}
	return report, previous, dueDate, nil
}

// transition reloads the report, checks that its status still equals expected
// and applies fn in the same atomic mutation, so fields written concurrently
// (upvotes, comments) are kept.
func (uc *ReportLifecycleUseCase) transition(ctx context.Context, reportID string, expected entity.ReportStatus, fn func(r *entity.Report) error) (*entity.Report, error) {
	report, err := uc.reportRepo.Mutate(ctx, reportID, func(r *entity.Report) error {
		if r.Status != expected {
			return repository.ErrStatusConflict
		}
		return fn(r)
	})
	switch {
	case err == nil:
		metrics.RecordTransition(string(expected), string(report.Status))
		return report, nil
	case stderrors.Is(err, repository.ErrStatusConflict), stderrors.Is(err, entity.ErrInvalidTransition):
		metrics.RecordTransitionConflict(string(expected))
		return nil, errors.InvalidState("Report status changed, please reload and try again", err)
	case stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.NotFound("Report", err)
	case stderrors.Is(err, entity.ErrNotAssignee):
		return nil, errors.Forbidden("You are not allowed to complete this report", err)
	case stderrors.Is(err, entity.ErrDueDateNotInFuture):
		return nil, errors.Validation("Due date must be in the future", err)
	case stderrors.Is(err, entity.ErrNoResolutionImages):
		return nil, errors.Validation("At least one resolved image is required", err)
	default:
		return nil, errors.Internal("Failed to update report", err)
	}
}
