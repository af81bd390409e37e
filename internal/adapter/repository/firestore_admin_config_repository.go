package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

// Allow-list entries are keyed by the lower-cased e-mail.
type firestoreAdminConfigRepository struct {
	client *firestore.Client
}

func NewFirestoreAdminConfigRepository(client *firestore.Client) repository.AdminConfigRepository {
	return &firestoreAdminConfigRepository{
		client: client,
	}
}

func (r *firestoreAdminConfigRepository) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.client.Collection(adminConfigCollection).Doc(strings.ToLower(email)).Get(ctx)
	if err == nil {
		return true, nil
	}
	if err = firestoreError(err); err == repository.ErrNotFound {
		return false, nil
	}
	return false, err
}

func (r *firestoreAdminConfigRepository) Add(ctx context.Context, entry *entity.AdminEmail) error {
	entry.Email = strings.ToLower(entry.Email)
	_, err := r.client.Collection(adminConfigCollection).Doc(entry.Email).Create(ctx, entry)
	return firestoreError(err)
}

func (r *firestoreAdminConfigRepository) List(ctx context.Context) ([]*entity.AdminEmail, error) {
	iter := r.client.Collection(adminConfigCollection).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	return collect[entity.AdminEmail](iter)
}
