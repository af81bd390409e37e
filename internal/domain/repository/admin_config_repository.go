package repository

import (
	"context"

	"ecotrack/internal/domain/entity"
)

type AdminConfigRepository interface {
	IsAdminEmail(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, entry *entity.AdminEmail) error
	List(ctx context.Context) ([]*entity.AdminEmail, error)
}
