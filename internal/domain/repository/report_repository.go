package repository

import (
	"context"
	"time"

	"ecotrack/internal/domain/entity"
)

// ReportFilter selects reports. Empty fields are ignored.
type ReportFilter struct {
	City          string
	Status        entity.ReportStatus
	PostedBy      string
	TakenBy       string
	IncompletedBy string
	UpvotedBy     string
	CommentedBy   string
}

// ReportSort names the timestamp the listing is ordered by, newest first.
type ReportSort string

const (
	SortByCreatedAt  ReportSort = "createdAt"
	SortByTakenOn    ReportSort = "takenOn"
	SortByResolvedOn ReportSort = "resolvedOn"
	SortByUpdatedAt  ReportSort = "updatedAt"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter, sort ReportSort, limit, offset int) ([]*entity.Report, int64, error)
	Delete(ctx context.Context, id string) error

	// ListOverdue returns taken, unresolved reports whose due date is before now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Report, error)

	// Mutate loads the report, applies fn and stores the result atomically.
	// fn's error aborts the write and is returned unchanged.
	Mutate(ctx context.Context, id string, fn func(report *entity.Report) error) (*entity.Report, error)
}
