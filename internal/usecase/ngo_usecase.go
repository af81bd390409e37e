package usecase

import (
	"context"
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

const ngoLogoFolder = "ngo-logos"

// NgoUseCase runs the NGO registration workflow: public requests, admin
// approval or rejection, and role removal.
type NgoUseCase struct {
	requestRepo repository.NgoRequestRepository
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	events      EventPublisher
	limits      UploadLimits
	now         func() time.Time
}

func NewNgoUseCase(
	requestRepo repository.NgoRequestRepository,
	userRepo repository.UserRepository,
	fileService service.FileUploadService,
	events EventPublisher,
	limits UploadLimits,
) *NgoUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &NgoUseCase{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		fileService: fileService,
		events:      events,
		limits:      limits,
		now:         time.Now,
	}
}

type NgoRequestInput struct {
	Name               string
	Email              string
	RegistrationNumber string
	City               string
	MobileNumber       string
	Message            string
	Logo               *service.FileUpload
}

func (uc *NgoUseCase) SubmitRequest(ctx context.Context, input NgoRequestInput) (*entity.NgoRequest, error) {
	email := normalizeEmail(input.Email)
	if strings.TrimSpace(input.Name) == "" || email == "" || strings.TrimSpace(input.RegistrationNumber) == "" ||
		strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.MobileNumber) == "" {
		return nil, errors.Validation("Name, email, registration number, city and mobile number are required", nil)
	}

	existing, err := uc.requestRepo.FindPendingByEmail(ctx, email)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Failed to check existing requests", err)
	}
	if existing != nil {
		return nil, errors.Conflict("A request is already pending for this email")
	}

	var logo string
	if input.Logo != nil {
		if err := validateImages([]service.FileUpload{*input.Logo}, UploadLimits{MaxFiles: 1, MaxSize: uc.limits.MaxSize}); err != nil {
			return nil, err
		}
		urls, err := uploadAll(ctx, uc.fileService, []service.FileUpload{*input.Logo}, ngoLogoFolder)
		if err != nil {
			return nil, err
		}
		logo = urls[0]
	}

	request := &entity.NgoRequest{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		Logo:               logo,
		RegistrationNumber: strings.TrimSpace(input.RegistrationNumber),
		City:               strings.TrimSpace(input.City),
		MobileNumber:       strings.TrimSpace(input.MobileNumber),
		Message:            strings.TrimSpace(input.Message),
		Status:             entity.NgoRequestPending,
		CreatedAt:          uc.now(),
	}

	if err := uc.requestRepo.Create(ctx, request); err != nil {
		if logo != "" {
			discardUploads(ctx, uc.fileService, []string{logo})
		}
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("A request is already pending for this email")
		}
		return nil, errors.Internal("Failed to submit NGO request", err)
	}

	logger.Info("NGO request %s submitted for %s", request.ID, request.Email)
	return request, nil
}

// Review approves or rejects a pending request.
func (uc *NgoUseCase) Review(ctx context.Context, actor policy.Actor, requestID string, decision entity.NgoRequestStatus) (*entity.NgoRequest, error) {
	switch decision {
	case entity.NgoRequestApproved:
		return uc.Approve(ctx, actor, requestID)
	case entity.NgoRequestRejected:
		return uc.Reject(ctx, actor, requestID)
	default:
		return nil, errors.Validation("Status must be approved or rejected", nil)
	}
}

// Approve turns the requester into an NGO user. An e-mail that already belongs
// to an admin or NGO is a conflict and leaves the request pending.
func (uc *NgoUseCase) Approve(ctx context.Context, actor policy.Actor, requestID string) (*entity.NgoRequest, error) {
	if err := policy.Authorize(actor, policy.NgoModerate, nil); err != nil {
		return nil, err
	}

	request, err := uc.loadPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, request.Email)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Failed to look up user", err)
	}
	if user != nil && (user.Role == entity.RoleAdmin || user.Role == entity.RoleNGO) {
		return nil, errors.Conflict("This email already belongs to an admin or NGO account")
	}

	now := uc.now()
	if err := uc.decide(ctx, request, actor.ID, entity.NgoRequestApproved, now); err != nil {
		return nil, err
	}

	if err := uc.promote(ctx, user, request, now); err != nil {
		// Put the request back so it can be reviewed again.
		request.Status = entity.NgoRequestPending
		request.ReviewedBy = ""
		request.ReviewedAt = nil
		if rollbackErr := uc.requestRepo.UpdateIfStatus(ctx, request, entity.NgoRequestApproved); rollbackErr != nil {
			logger.Error("Failed to roll back NGO request %s: %v", request.ID, rollbackErr)
		}
		return nil, errors.Internal("Failed to create NGO account", err)
	}

	logger.Info("NGO request %s approved by %s", request.ID, actor.ID)
	uc.events.Publish(ctx, entity.DomainEvent{
		Type:       entity.EventNgoApproved,
		NgoRequest: request.Clone(),
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return request, nil
}

func (uc *NgoUseCase) Reject(ctx context.Context, actor policy.Actor, requestID string) (*entity.NgoRequest, error) {
	if err := policy.Authorize(actor, policy.NgoModerate, nil); err != nil {
		return nil, err
	}

	request, err := uc.loadPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if err := uc.decide(ctx, request, actor.ID, entity.NgoRequestRejected, now); err != nil {
		return nil, err
	}

	logger.Info("NGO request %s rejected by %s", request.ID, actor.ID)
	uc.events.Publish(ctx, entity.DomainEvent{
		Type:       entity.EventNgoRejected,
		NgoRequest: request.Clone(),
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return request, nil
}

func (uc *NgoUseCase) ListRequests(ctx context.Context, actor policy.Actor, status entity.NgoRequestStatus, limit, offset int) ([]*entity.NgoRequest, int64, error) {
	if err := policy.Authorize(actor, policy.NgoModerate, nil); err != nil {
		return nil, 0, err
	}
	requests, total, err := uc.requestRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list NGO requests", err)
	}
	return requests, total, nil
}

// RemoveNGORole demotes an NGO back to a regular user.
func (uc *NgoUseCase) RemoveNGORole(ctx context.Context, actor policy.Actor, userID string) (*entity.User, error) {
	if err := policy.Authorize(actor, policy.UserManage, nil); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, "User")
	}
	if !user.IsNGO() {
		return nil, errors.Validation("User is not an NGO", nil)
	}

	user.Role = entity.RoleUser
	user.ClearNGOFields()
	user.IsProfileCompleted = user.ProfileComplete()
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update user", err)
	}

	logger.Info("NGO role removed from %s by %s", user.ID, actor.ID)
	return user, nil
}

func (uc *NgoUseCase) loadPending(ctx context.Context, requestID string) (*entity.NgoRequest, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, loadError(err, "NGO request")
	}
	if request.Status != entity.NgoRequestPending {
		return nil, errors.Conflict("NGO request has already been " + string(request.Status))
	}
	return request, nil
}

func (uc *NgoUseCase) decide(ctx context.Context, request *entity.NgoRequest, reviewer string, status entity.NgoRequestStatus, now time.Time) error {
	request.Status = status
	request.ReviewedBy = reviewer
	request.ReviewedAt = &now

	err := uc.requestRepo.UpdateIfStatus(ctx, request, entity.NgoRequestPending)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, repository.ErrStatusConflict):
		return errors.Conflict("NGO request has already been reviewed")
	default:
		return errors.Internal("Failed to update NGO request", err)
	}
}

// promote creates the NGO account or upgrades an existing regular user.
func (uc *NgoUseCase) promote(ctx context.Context, user *entity.User, request *entity.NgoRequest, now time.Time) error {
	registration := request.RegistrationNumber
	mobile := request.MobileNumber

	if user == nil {
		return uc.userRepo.Create(ctx, &entity.User{
			ID:                 uuid.New().String(),
			Name:               request.Name,
			Email:              request.Email,
			Provider:           entity.ProviderLocal,
			Role:               entity.RoleNGO,
			IsProfileCompleted: true,
			City:               request.City,
			Photo:              request.Logo,
			RegistrationNumber: &registration,
			MobileNumber:       &mobile,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	user.Role = entity.RoleNGO
	user.Name = request.Name
	user.City = request.City
	if request.Logo != "" {
		user.Photo = request.Logo
	}
	user.RegistrationNumber = &registration
	user.MobileNumber = &mobile
	user.IsProfileCompleted = true
	user.UpdatedAt = now
	return uc.userRepo.Update(ctx, user)
}
