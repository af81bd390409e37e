package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

// E-mail uniqueness rests on the unique index from database.EnsureIndexes.
type mongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		col: db.Collection(usersCollection),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := r.col.InsertOne(ctx, user)
	return mongoError(err)
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mongoError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) List(ctx context.Context, role entity.Role, limit, offset int) ([]*entity.User, int64, error) {
	query := bson.M{}
	if role != "" {
		query["role"] = role
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.col.Find(ctx, query, pageOptions(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, limit, offset))
	if err != nil {
		return nil, 0, err
	}

	users := make([]*entity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mongoError(err)
	}
	return &user, nil
}
