package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit is the budget for one action: Burst requests at once, refilled at
// one request per Every.
type Limit struct {
	Every time.Duration
	Burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key and action.
type RateLimiter struct {
	limits       map[string]Limit
	defaultLimit Limit
	visitors     map[string]*visitor
	mutex        sync.Mutex
	now          func() time.Time
}

func NewRateLimiter(defaultLimit Limit, limits map[string]Limit) *RateLimiter {
	if limits == nil {
		limits = map[string]Limit{}
	}
	return &RateLimiter{
		limits:       limits,
		defaultLimit: defaultLimit,
		visitors:     make(map[string]*visitor),
		now:          time.Now,
	}
}

// Allow consumes a token for key performing action. When the bucket is empty
// it returns false and how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := rl.now()
	v := rl.visitor(key, action, now)

	reservation := v.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, rl.limitFor(action).Every
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) visitor(key, action string, now time.Time) *visitor {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	id := key + ":" + action
	v, ok := rl.visitors[id]
	if !ok {
		limit := rl.limitFor(action)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(limit.Every), limit.Burst)}
		rl.visitors[id] = v
	}
	v.lastSeen = now
	return v
}

func (rl *RateLimiter) limitFor(action string) Limit {
	if limit, ok := rl.limits[action]; ok {
		return limit
	}
	return rl.defaultLimit
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for id, v := range rl.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(rl.visitors, id)
		}
	}
}

// StartCleanupRoutine runs Cleanup periodically until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.visitors)
}
