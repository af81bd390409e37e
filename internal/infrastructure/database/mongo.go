// Package database connects the MongoDB store used when STORE_DRIVER=mongo.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrack/pkg/logger"
)

// ConnectMongo dials uri, pings it and creates the indexes the repositories rely on.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	start := time.Now()
	logger.Info("mongo: connecting uri=%s db=%s", redactURI(uri), dbName)

	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		// A missing secondary index only slows queries; the unique e-mail
		// index is the one that matters and is reported here too.
		logger.Warn("mongo: index creation warnings: %v", err)
	}

	logger.Info("mongo: connected in %s", time.Since(start).Round(time.Millisecond))
	return client, db, nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"reports": {
			{Keys: bson.D{{Key: "city", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "postedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "takenBy", Value: 1}, {Key: "takenOn", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
			{Keys: bson.D{{Key: "incompletedBy", Value: 1}}},
			{Keys: bson.D{{Key: "upvotes", Value: 1}}},
			{Keys: bson.D{{Key: "commenterIds", Value: 1}}},
		},
		"ngo_requests": {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			// One pending request per e-mail.
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().
					SetName("pending_email_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
		},
	}

	var errs []string
	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			errs = append(errs, collection+": "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func redactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}
