package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type mongoAdminConfigRepository struct {
	col *mongo.Collection
}

func NewMongoAdminConfigRepository(db *mongo.Database) repository.AdminConfigRepository {
	return &mongoAdminConfigRepository{
		col: db.Collection(adminConfigCollection),
	}
}

func (r *mongoAdminConfigRepository) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": strings.ToLower(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoAdminConfigRepository) Add(ctx context.Context, entry *entity.AdminEmail) error {
	entry.Email = strings.ToLower(entry.Email)
	_, err := r.col.InsertOne(ctx, entry)
	return mongoError(err)
}

func (r *mongoAdminConfigRepository) List(ctx context.Context) ([]*entity.AdminEmail, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	entries := make([]*entity.AdminEmail, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
