package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type adminConfigRepository struct {
	mu      sync.RWMutex
	entries map[string]*entity.AdminEmail
}

func NewAdminConfigRepository(seed ...string) repository.AdminConfigRepository {
	r := &adminConfigRepository{entries: make(map[string]*entity.AdminEmail)}
	for _, email := range seed {
		email = strings.ToLower(email)
		r.entries[email] = &entity.AdminEmail{Email: email}
	}
	return r
}

func (r *adminConfigRepository) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[strings.ToLower(email)]
	return ok, nil
}

func (r *adminConfigRepository) Add(ctx context.Context, entry *entity.AdminEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(entry.Email)
	if _, exists := r.entries[email]; exists {
		return repository.ErrDuplicate
	}
	stored := *entry
	stored.Email = email
	r.entries[email] = &stored
	return nil
}

func (r *adminConfigRepository) List(ctx context.Context) ([]*entity.AdminEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*entity.AdminEmail, 0, len(r.entries))
	for _, entry := range r.entries {
		c := *entry
		entries = append(entries, &c)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Email < entries[j].Email })
	return entries, nil
}
