package repository

import (
	"context"
	"time"
)

// OTPRepository keeps short-lived one-time codes keyed by e-mail.
type OTPRepository interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Get returns ErrNotFound when no live code exists.
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}
