package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type mongoNgoRequestRepository struct {
	col *mongo.Collection
}

func NewMongoNgoRequestRepository(db *mongo.Database) repository.NgoRequestRepository {
	return &mongoNgoRequestRepository{
		col: db.Collection(ngoRequestsCollection),
	}
}

func (r *mongoNgoRequestRepository) Create(ctx context.Context, request *entity.NgoRequest) error {
	request.Email = strings.ToLower(request.Email)
	_, err := r.col.InsertOne(ctx, request)
	return mongoError(err)
}

func (r *mongoNgoRequestRepository) GetByID(ctx context.Context, id string) (*entity.NgoRequest, error) {
	var request entity.NgoRequest
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, mongoError(err)
	}
	return &request, nil
}

func (r *mongoNgoRequestRepository) FindPendingByEmail(ctx context.Context, email string) (*entity.NgoRequest, error) {
	filter := bson.M{"email": strings.ToLower(email), "status": entity.NgoRequestPending}

	var request entity.NgoRequest
	if err := r.col.FindOne(ctx, filter).Decode(&request); err != nil {
		return nil, mongoError(err)
	}
	return &request, nil
}

func (r *mongoNgoRequestRepository) List(ctx context.Context, status entity.NgoRequestStatus, limit, offset int) ([]*entity.NgoRequest, int64, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.col.Find(ctx, query, pageOptions(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, limit, offset))
	if err != nil {
		return nil, 0, err
	}

	requests := make([]*entity.NgoRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *mongoNgoRequestRepository) UpdateIfStatus(ctx context.Context, request *entity.NgoRequest, expected entity.NgoRequestStatus) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": request.ID, "status": expected}, request)
	if err != nil {
		return mongoError(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": request.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrStatusConflict
}
