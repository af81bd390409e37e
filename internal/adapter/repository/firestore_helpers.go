package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ecotrack/internal/domain/repository"
)

const (
	usersCollection       = "users"
	reportsCollection     = "reports"
	ngoRequestsCollection = "ngo_requests"
	adminConfigCollection = "admin_config"
)

// firestoreError maps gRPC status codes onto the repository sentinels.
func firestoreError(err error) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return repository.ErrNotFound
	case codes.AlreadyExists:
		return repository.ErrDuplicate
	}
	return err
}

func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	value, ok := result["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", result["total"])
	}
	return value.GetIntegerValue(), nil
}

func paged(q firestore.Query, limit, offset int) firestore.Query {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

// collect decodes every document of iter into a fresh T.
func collect[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	items := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}
