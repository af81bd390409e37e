// Package memory provides process-local repositories used by tests and by
// STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[string]*entity.Report
}

func NewReportRepository() repository.ReportRepository {
	return &reportRepository{reports: make(map[string]*entity.Report)}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; exists {
		return repository.ErrDuplicate
	}
	r.reports[report.ID] = report.Clone()
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return report.Clone(), nil
}

func (r *reportRepository) List(ctx context.Context, filter repository.ReportFilter, sortBy repository.ReportSort, limit, offset int) ([]*entity.Report, int64, error) {
	r.mu.RLock()
	matched := make([]*entity.Report, 0)
	for _, report := range r.reports {
		if matchesReport(report, filter) {
			matched = append(matched, report.Clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := reportSortKey(matched[i], sortBy), reportSortKey(matched[j], sortBy)
		if a.Equal(b) {
			return matched[i].ID < matched[j].ID
		}
		return a.After(b)
	})

	total := int64(len(matched))
	return paginate(matched, limit, offset), total, nil
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reports, id)
	return nil
}

func (r *reportRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overdue := make([]*entity.Report, 0)
	for _, report := range r.reports {
		if report.IsOverdue(now) {
			overdue = append(overdue, report.Clone())
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		if overdue[i].DueDate.Equal(*overdue[j].DueDate) {
			return overdue[i].ID < overdue[j].ID
		}
		return overdue[i].DueDate.Before(*overdue[j].DueDate)
	})
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

func (r *reportRepository) Mutate(ctx context.Context, id string, fn func(report *entity.Report) error) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.reports[id] = working
	return working.Clone(), nil
}

func matchesReport(report *entity.Report, filter repository.ReportFilter) bool {
	if filter.City != "" && report.City != filter.City {
		return false
	}
	if filter.Status != "" && report.Status != filter.Status {
		return false
	}
	if filter.PostedBy != "" && report.PostedBy != filter.PostedBy {
		return false
	}
	if filter.TakenBy != "" && report.AssignedTo() != filter.TakenBy {
		return false
	}
	if filter.IncompletedBy != "" && !contains(report.IncompletedBy, filter.IncompletedBy) {
		return false
	}
	if filter.UpvotedBy != "" && !contains(report.Upvotes, filter.UpvotedBy) {
		return false
	}
	if filter.CommentedBy != "" && !contains(report.CommenterIDs, filter.CommentedBy) {
		return false
	}
	return true
}

func reportSortKey(report *entity.Report, sortBy repository.ReportSort) time.Time {
	switch sortBy {
	case repository.SortByTakenOn:
		if report.TakenOn != nil {
			return *report.TakenOn
		}
	case repository.SortByResolvedOn:
		if report.ResolvedOn != nil {
			return *report.ResolvedOn
		}
	case repository.SortByUpdatedAt:
		return report.UpdatedAt
	}
	return report.CreatedAt
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
