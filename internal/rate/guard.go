package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptPrefix = "login_attempts::"
	lockPrefix    = "account_locked::"
)

var (
	// ErrLocked indicates the identifier is under lockout.
	ErrLocked = errors.New("identifier locked")
	// ErrRedisUnavailable indicates the attempt store is unreachable.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds lockout tuning parameters.
//
// FailOpen controls what Check does when Redis is down: the default (false)
// propagates ErrRedisUnavailable so a login fails closed rather than bypass
// brute-force protection during an outage.
type Config struct {
	MaxAttempts     int
	LockoutWindow   time.Duration
	LockoutDuration time.Duration
	FailOpen        bool
}

// Guard tracks failed login attempts per identifier and enforces temporary
// lockouts. All state lives in Redis; the Guard itself is stateless and
// safe for concurrent use across instances.
type Guard struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Guard backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Guard {
	return &Guard{redis: redisClient, config: cfg}
}

// Check reports whether the identifier may attempt a login. A locked
// identifier yields ErrLocked and the remaining lockout duration. The check
// runs before any credential lookup so a locked identifier never touches
// the credential store.
func (g *Guard) Check(ctx context.Context, identifier string) (time.Duration, error) {
	ttl, err := g.redis.TTL(ctx, lockPrefix+identifier).Result()
	if err != nil {
		if g.config.FailOpen {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// TTL returns a negative duration when the key is missing or unexpiring;
	// either way the identifier is not locked.
	if ttl > 0 {
		return ttl, ErrLocked
	}
	return 0, nil
}

// RecordFailure increments the attempt counter, arming its TTL on the first
// increment of the window. Reaching MaxAttempts sets the lock flag and
// deletes the counter, so the penalty window restarts clean.
func (g *Guard) RecordFailure(ctx context.Context, identifier string) error {
	attemptKey := attemptPrefix + identifier

	count, err := g.redis.Incr(ctx, attemptKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := g.redis.Expire(ctx, attemptKey, g.config.LockoutWindow).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count >= int64(g.config.MaxAttempts) {
		if err := g.redis.Set(ctx, lockPrefix+identifier, "1", g.config.LockoutDuration).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if err := g.redis.Del(ctx, attemptKey).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return nil
}

// RecordSuccess clears both the counter and the lock flag. A legitimate
// login after a few typos fully resets the state.
func (g *Guard) RecordSuccess(ctx context.Context, identifier string) error {
	if err := g.redis.Del(ctx, attemptPrefix+identifier, lockPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the current counter value. Missing keys read as zero and
// do not reveal whether the identifier maps to an account.
func (g *Guard) Attempts(ctx context.Context, identifier string) (int, error) {
	count, err := g.redis.Get(ctx, attemptPrefix+identifier).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}
