package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{
		client: client,
	}
}

func (r *firestoreReportRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(reportsCollection).Doc(id)
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *entity.Report) error {
	_, err := r.doc(report.ID).Create(ctx, report)
	return firestoreError(err)
}

func (r *firestoreReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	doc, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError(err)
	}

	var report entity.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *firestoreReportRepository) List(ctx context.Context, filter repository.ReportFilter, sortBy repository.ReportSort, limit, offset int) ([]*entity.Report, int64, error) {
	query := r.client.Collection(reportsCollection).Query
	if filter.City != "" {
		query = query.Where("city", "==", filter.City)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.PostedBy != "" {
		query = query.Where("postedBy", "==", filter.PostedBy)
	}
	if filter.TakenBy != "" {
		query = query.Where("takenBy", "==", filter.TakenBy)
	}

	// Firestore allows a single array-contains clause per query.
	switch {
	case filter.IncompletedBy != "":
		query = query.Where("incompletedBy", "array-contains", filter.IncompletedBy)
	case filter.UpvotedBy != "":
		query = query.Where("upvotes", "array-contains", filter.UpvotedBy)
	case filter.CommentedBy != "":
		query = query.Where("commenterIds", "array-contains", filter.CommentedBy)
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if sortBy == "" {
		sortBy = repository.SortByCreatedAt
	}
	query = paged(query.OrderBy(string(sortBy), firestore.Desc), limit, offset)

	reports, err := collect[entity.Report](query.Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *firestoreReportRepository) Delete(ctx context.Context, id string) error {
	_, err := r.doc(id).Delete(ctx, firestore.Exists)
	return firestoreError(err)
}

func (r *firestoreReportRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Report, error) {
	query := r.client.Collection(reportsCollection).
		Where("status", "==", string(entity.ReportStatusTaken)).
		Where("dueDate", "<", now).
		OrderBy("dueDate", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	reports, err := collect[entity.Report](query.Documents(ctx))
	if err != nil {
		return nil, err
	}

	overdue := reports[:0]
	for _, report := range reports {
		if report.IsOverdue(now) {
			overdue = append(overdue, report)
		}
	}
	return overdue, nil
}

func (r *firestoreReportRepository) Mutate(ctx context.Context, id string, fn func(report *entity.Report) error) (*entity.Report, error) {
	ref := r.doc(id)
	var result *entity.Report

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return firestoreError(err)
		}

		var report entity.Report
		if err := doc.DataTo(&report); err != nil {
			return err
		}
		if err := fn(&report); err != nil {
			return err
		}
		result = &report
		return tx.Set(ref, &report)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
