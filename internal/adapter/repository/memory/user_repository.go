package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type userRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return repository.ErrDuplicate
	}
	if _, exists := r.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	r.users[user.ID] = user.Clone()
	r.byEmail[email] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.users[id].Clone(), nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	oldEmail, newEmail := strings.ToLower(stored.Email), strings.ToLower(user.Email)
	if oldEmail != newEmail {
		if _, taken := r.byEmail[newEmail]; taken {
			return repository.ErrDuplicate
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = user.ID
	}
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, strings.ToLower(user.Email))
	delete(r.users, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, role entity.Role, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.RLock()
	users := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		if role == "" || user.Role == role {
			users = append(users, user.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return paginate(users, limit, offset), int64(len(users)), nil
}
