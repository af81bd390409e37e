package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ecotrack/internal/domain/repository"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// otpRepository is a TTL map for single-instance deployments without Redis.
type otpRepository struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	now     func() time.Time
}

func NewOTPRepository() repository.OTPRepository {
	return &otpRepository{entries: make(map[string]otpEntry), now: time.Now}
}

func (r *otpRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[strings.ToLower(email)] = otpEntry{code: code, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *otpRepository) Get(ctx context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	entry, ok := r.entries[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.entries, key)
		return "", repository.ErrNotFound
	}
	return entry.code, nil
}

func (r *otpRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, strings.ToLower(email))
	return nil
}
