package usecase

import (
	"context"
	"strings"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/errors"
)

const profilePhotoFolder = "profiles"

type UserUseCase struct {
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	limits      UploadLimits
	now         func() time.Time
}

func NewUserUseCase(userRepo repository.UserRepository, fileService service.FileUploadService, limits UploadLimits) *UserUseCase {
	return &UserUseCase{
		userRepo:    userRepo,
		fileService: fileService,
		limits:      limits,
		now:         time.Now,
	}
}

type ProfileInput struct {
	Name               string
	City               string
	RegistrationNumber string
	MobileNumber       string
	Photo              *service.FileUpload
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, "User")
	}
	return user, nil
}

// CreateProfile completes a fresh account. NGOs must also provide their
// registration number, mobile number and a photo.
func (uc *UserUseCase) CreateProfile(ctx context.Context, userID string, input ProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, "User")
	}
	if user.IsProfileCompleted {
		return nil, errors.Conflict("Profile is already complete")
	}

	name, city := strings.TrimSpace(input.Name), strings.TrimSpace(input.City)
	if name == "" || city == "" {
		return nil, errors.Validation("Name and city are required", nil)
	}

	if user.IsNGO() {
		reg, mobile := strings.TrimSpace(input.RegistrationNumber), strings.TrimSpace(input.MobileNumber)
		if reg == "" || mobile == "" {
			return nil, errors.Validation("Registration number and mobile number are required for NGOs", nil)
		}
		if input.Photo == nil && user.Photo == "" {
			return nil, errors.Validation("A photo is required for NGOs", nil)
		}
		user.RegistrationNumber = &reg
		user.MobileNumber = &mobile
	} else {
		user.ClearNGOFields()
	}

	if err := uc.replacePhoto(ctx, user, input.Photo); err != nil {
		return nil, err
	}

	user.Name = name
	user.City = city
	user.IsProfileCompleted = user.ProfileComplete()
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update profile", err)
	}
	return user, nil
}

// UpdateProfile changes name, city or photo. NGO profiles are managed through
// the approval workflow and cannot be edited here.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, actor policy.Actor, input ProfileInput) (*entity.User, error) {
	if err := policy.Authorize(actor, policy.ProfileUpdate, nil); err != nil {
		return nil, err
	}

	name, city := strings.TrimSpace(input.Name), strings.TrimSpace(input.City)
	if name == "" && city == "" {
		return nil, errors.Validation("Provide a name or a city to update", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, loadError(err, "User")
	}

	if name != "" {
		user.Name = name
	}
	if city != "" {
		user.City = city
	}
	if err := uc.replacePhoto(ctx, user, input.Photo); err != nil {
		return nil, err
	}
	user.ClearNGOFields()
	user.IsProfileCompleted = user.ProfileComplete()
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update profile", err)
	}
	return user, nil
}

func (uc *UserUseCase) replacePhoto(ctx context.Context, user *entity.User, photo *service.FileUpload) error {
	if photo == nil {
		return nil
	}
	if err := validateImages([]service.FileUpload{*photo}, UploadLimits{MaxFiles: 1, MaxSize: uc.limits.MaxSize}); err != nil {
		return err
	}
	urls, err := uploadAll(ctx, uc.fileService, []service.FileUpload{*photo}, profilePhotoFolder)
	if err != nil {
		return err
	}
	user.Photo = urls[0]
	return nil
}
