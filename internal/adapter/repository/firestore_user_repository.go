package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

// Create checks e-mail uniqueness and writes the user in one transaction.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	ref := r.users().Doc(user.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := r.emailTaken(tx, user.Email, "")
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrDuplicate
		}
		return firestoreError(tx.Create(ref, user))
	})
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError(err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.users().Where("email", "==", strings.ToLower(email)).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	ref := r.users().Doc(user.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return firestoreError(err)
		}
		taken, err := r.emailTaken(tx, user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrDuplicate
		}
		return tx.Set(ref, user)
	})
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.users().Doc(id).Delete(ctx, firestore.Exists)
	return firestoreError(err)
}

func (r *firestoreUserRepository) List(ctx context.Context, role entity.Role, limit, offset int) ([]*entity.User, int64, error) {
	query := r.users().Query
	if role != "" {
		query = query.Where("role", "==", string(role))
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	users, err := collect[entity.User](paged(query.OrderBy("createdAt", firestore.Desc), limit, offset).Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// emailTaken reports whether a user other than exceptID owns email.
func (r *firestoreUserRepository) emailTaken(tx *firestore.Transaction, email, exceptID string) (bool, error) {
	docs, err := tx.Documents(r.users().Where("email", "==", email).Limit(2)).GetAll()
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.Ref.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}
