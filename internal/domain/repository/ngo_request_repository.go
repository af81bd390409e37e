package repository

import (
	"context"

	"ecotrack/internal/domain/entity"
)

type NgoRequestRepository interface {
	// Create returns ErrDuplicate when another request for the same e-mail is
	// still pending.
	Create(ctx context.Context, request *entity.NgoRequest) error
	GetByID(ctx context.Context, id string) (*entity.NgoRequest, error)
	FindPendingByEmail(ctx context.Context, email string) (*entity.NgoRequest, error)
	List(ctx context.Context, status entity.NgoRequestStatus, limit, offset int) ([]*entity.NgoRequest, int64, error)

	// UpdateIfStatus stores request only while the stored status equals expected.
	UpdateIfStatus(ctx context.Context, request *entity.NgoRequest, expected entity.NgoRequestStatus) error
}
