package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type firestoreNgoRequestRepository struct {
	client *firestore.Client
}

func NewFirestoreNgoRequestRepository(client *firestore.Client) repository.NgoRequestRepository {
	return &firestoreNgoRequestRepository{
		client: client,
	}
}

func (r *firestoreNgoRequestRepository) requests() *firestore.CollectionRef {
	return r.client.Collection(ngoRequestsCollection)
}

// Create checks for another pending request with the same e-mail in the same
// transaction that writes the new document.
func (r *firestoreNgoRequestRepository) Create(ctx context.Context, request *entity.NgoRequest) error {
	request.Email = strings.ToLower(request.Email)
	ref := r.requests().Doc(request.ID)
	pending := r.requests().
		Where("email", "==", request.Email).
		Where("status", "==", string(entity.NgoRequestPending)).
		Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if request.Status == entity.NgoRequestPending {
			docs, err := tx.Documents(pending).GetAll()
			if err != nil {
				return err
			}
			if len(docs) > 0 {
				return repository.ErrDuplicate
			}
		}
		return tx.Create(ref, request)
	})
	return firestoreError(err)
}

func (r *firestoreNgoRequestRepository) GetByID(ctx context.Context, id string) (*entity.NgoRequest, error) {
	doc, err := r.requests().Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError(err)
	}

	var request entity.NgoRequest
	if err := doc.DataTo(&request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *firestoreNgoRequestRepository) FindPendingByEmail(ctx context.Context, email string) (*entity.NgoRequest, error) {
	iter := r.requests().
		Where("email", "==", strings.ToLower(email)).
		Where("status", "==", string(entity.NgoRequestPending)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var request entity.NgoRequest
	if err := doc.DataTo(&request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *firestoreNgoRequestRepository) List(ctx context.Context, status entity.NgoRequestStatus, limit, offset int) ([]*entity.NgoRequest, int64, error) {
	query := r.requests().Query
	if status != "" {
		query = query.Where("status", "==", string(status))
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	requests, err := collect[entity.NgoRequest](paged(query.OrderBy("createdAt", firestore.Desc), limit, offset).Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *firestoreNgoRequestRepository) UpdateIfStatus(ctx context.Context, request *entity.NgoRequest, expected entity.NgoRequestStatus) error {
	ref := r.requests().Doc(request.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return firestoreError(err)
		}

		var stored entity.NgoRequest
		if err := doc.DataTo(&stored); err != nil {
			return err
		}
		if stored.Status != expected {
			return repository.ErrStatusConflict
		}
		return tx.Set(ref, request)
	})
}
