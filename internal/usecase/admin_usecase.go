package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/policy"
	"ecotrack/internal/domain/repository"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
)

type AdminUseCase struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminConfigRepository
	scanner   *OverdueScannerUseCase
	now       func() time.Time
}

func NewAdminUseCase(userRepo repository.UserRepository, adminRepo repository.AdminConfigRepository, scanner *OverdueScannerUseCase) *AdminUseCase {
	return &AdminUseCase{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		scanner:   scanner,
		now:       time.Now,
	}
}

func (uc *AdminUseCase) ListUsers(ctx context.Context, actor policy.Actor, role entity.Role, limit, offset int) ([]*entity.User, int64, error) {
	if err := policy.Authorize(actor, policy.UserManage, nil); err != nil {
		return nil, 0, err
	}
	users, total, err := uc.userRepo.List(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list users", err)
	}
	return users, total, nil
}

func (uc *AdminUseCase) DeleteUser(ctx context.Context, actor policy.Actor, userID string) error {
	if err := policy.Authorize(actor, policy.UserManage, nil); err != nil {
		return err
	}
	if userID == actor.ID {
		return errors.Validation("You cannot delete your own account", nil)
	}
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return loadError(err, "User")
	}
	logger.Info("User %s deleted by %s", userID, actor.ID)
	return nil
}

func (uc *AdminUseCase) ListAdminEmails(ctx context.Context, actor policy.Actor) ([]*entity.AdminEmail, error) {
	if err := policy.Authorize(actor, policy.UserManage, nil); err != nil {
		return nil, err
	}
	entries, err := uc.adminRepo.List(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to list admin emails", err)
	}
	return entries, nil
}

func (uc *AdminUseCase) AddAdminEmail(ctx context.Context, actor policy.Actor, email string) (*entity.AdminEmail, error) {
	if err := policy.Authorize(actor, policy.UserManage, nil); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.Validation("Email is required", nil)
	}

	entry := &entity.AdminEmail{Email: email, AddedBy: actor.ID, CreatedAt: uc.now()}
	if err := uc.adminRepo.Add(ctx, entry); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("Email is already on the admin list")
		}
		return nil, errors.Internal("Failed to add admin email", err)
	}
	logger.Info("Admin email %s added by %s", email, actor.ID)
	return entry, nil
}

func (uc *AdminUseCase) ScannerStatus(actor policy.Actor) (*ScannerStatus, error) {
	if err := policy.Authorize(actor, policy.ScannerInspect, nil); err != nil {
		return nil, err
	}
	status := uc.scanner.GetStatus()
	return &status, nil
}
