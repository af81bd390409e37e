package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
)

type ngoRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*entity.NgoRequest
}

func NewNgoRequestRepository() repository.NgoRequestRepository {
	return &ngoRequestRepository{requests: make(map[string]*entity.NgoRequest)}
}

func (r *ngoRequestRepository) Create(ctx context.Context, request *entity.NgoRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[request.ID]; exists {
		return repository.ErrDuplicate
	}
	if request.Status == entity.NgoRequestPending {
		for _, other := range r.requests {
			if other.Status == entity.NgoRequestPending && strings.EqualFold(other.Email, request.Email) {
				return repository.ErrDuplicate
			}
		}
	}
	r.requests[request.ID] = request.Clone()
	return nil
}

func (r *ngoRequestRepository) GetByID(ctx context.Context, id string) (*entity.NgoRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return request.Clone(), nil
}

func (r *ngoRequestRepository) FindPendingByEmail(ctx context.Context, email string) (*entity.NgoRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, request := range r.requests {
		if request.Status == entity.NgoRequestPending && strings.EqualFold(request.Email, email) {
			return request.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ngoRequestRepository) List(ctx context.Context, status entity.NgoRequestStatus, limit, offset int) ([]*entity.NgoRequest, int64, error) {
	r.mu.RLock()
	requests := make([]*entity.NgoRequest, 0, len(r.requests))
	for _, request := range r.requests {
		if status == "" || request.Status == status {
			requests = append(requests, request.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return paginate(requests, limit, offset), int64(len(requests)), nil
}

func (r *ngoRequestRepository) UpdateIfStatus(ctx context.Context, request *entity.NgoRequest, expected entity.NgoRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.requests[request.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrStatusConflict
	}
	r.requests[request.ID] = request.Clone()
	return nil
}
