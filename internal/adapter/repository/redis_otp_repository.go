package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ecotrack/internal/domain/repository"
)

type redisOTPRepository struct {
	client *redis.Client
}

// NewRedisOTPRepository stores one code per e-mail under "otp:<email>" and
// leaves expiry to Redis.
func NewRedisOTPRepository(client *redis.Client) repository.OTPRepository {
	return &redisOTPRepository{
		client: client,
	}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

func (r *redisOTPRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

func (r *redisOTPRepository) Get(ctx context.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp: %w", err)
	}
	return code, nil
}

func (r *redisOTPRepository) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, otpKey(email)).Err()
}
