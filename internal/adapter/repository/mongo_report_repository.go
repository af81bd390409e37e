package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

// mutateAttempts bounds the optimistic retry loop in Mutate.
const mutateAttempts = 5

type mongoReportRepository struct {
	col *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{
		col: db.Collection(reportsCollection),
	}
}

func (r *mongoReportRepository) Create(ctx context.Context, report *entity.Report) error {
	report.Revision = 0
	_, err := r.col.InsertOne(ctx, report)
	return mongoError(err)
}

func (r *mongoReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	var report entity.Report
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&report); err != nil {
		return nil, mongoError(err)
	}
	return &report, nil
}

func (r *mongoReportRepository) List(ctx context.Context, filter repository.ReportFilter, sortBy repository.ReportSort, limit, offset int) ([]*entity.Report, int64, error) {
	query := bson.M{}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PostedBy != "" {
		query["postedBy"] = filter.PostedBy
	}
	if filter.TakenBy != "" {
		query["takenBy"] = filter.TakenBy
	}
	// Equality against an array field matches any element.
	if filter.IncompletedBy != "" {
		query["incompletedBy"] = filter.IncompletedBy
	}
	if filter.UpvotedBy != "" {
		query["upvotes"] = filter.UpvotedBy
	}
	if filter.CommentedBy != "" {
		query["commenterIds"] = filter.CommentedBy
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if sortBy == "" {
		sortBy = repository.SortByCreatedAt
	}
	cursor, err := r.col.Find(ctx, query, pageOptions(bson.D{{Key: string(sortBy), Value: -1}, {Key: "_id", Value: 1}}, limit, offset))
	if err != nil {
		return nil, 0, err
	}

	reports := make([]*entity.Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *mongoReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoReportRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Report, error) {
	query := bson.M{
		"status":     entity.ReportStatusTaken,
		"dueDate":    bson.M{"$lt": now},
		"resolvedOn": nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	reports := make([]*entity.Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Mutate retries when another writer bumped the revision between read and write.
func (r *mongoReportRepository) Mutate(ctx context.Context, id string, fn func(report *entity.Report) error) (*entity.Report, error) {
	for attempt := 0; attempt < mutateAttempts; attempt++ {
		report, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		revision := report.Revision
		if err := fn(report); err != nil {
			return nil, err
		}

		update, err := revisionUpdate(report)
		if err != nil {
			return nil, err
		}
		res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "revision": revision}, update)
		if err != nil {
			return nil, mongoError(err)
		}
		if res.MatchedCount == 1 {
			report.Revision = revision + 1
			return report, nil
		}
	}
	return nil, repository.ErrStatusConflict
}

// revisionUpdate sets every stored field of report and increments its revision.
func revisionUpdate(report *entity.Report) (bson.M, error) {
	raw, err := bson.Marshal(report)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	delete(fields, "revision")

	return bson.M{
		"$set": fields,
		"$inc": bson.M{"revision": 1},
	}, nil
}
