package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	forwardPrefix = "refresh_token::"
	reversePrefix = "user_refresh_token::"

	rawTokenSize = 32
)

var (
	// ErrNotFound is returned by Resolve for any unresolvable token:
	// expired, already rotated, revoked, or never issued. Callers get no
	// distinction between those cases.
	ErrNotFound = errors.New("refresh token not found")
	// ErrUnavailable indicates the token store is unreachable.
	ErrUnavailable = errors.New("refresh store unavailable")
)

// Store is the Redis-backed refresh-token store. It holds no in-process
// state and is safe for concurrent use.
type Store struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

// NewStore creates a Store whose entries expire after ttl.
func NewStore(redisClient redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{redis: redisClient, ttl: ttl}
}

// Issue mints a new raw token for the user and stores the forward and
// reverse entries. Any previously active token is revoked first, so at most
// one refresh token per user is live. Concurrent logins race benignly: the
// last writer wins and earlier tokens resolve to NOT_FOUND.
func (s *Store) Issue(ctx context.Context, userID string) (string, error) {
	if err := s.Revoke(ctx, userID); err != nil {
		return "", err
	}

	raw := make([]byte, rawTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	rawToken := base64.RawURLEncoding.EncodeToString(raw)
	hashed := hashValue(rawToken)

	if err := s.redis.Set(ctx, forwardPrefix+hashed, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.redis.Set(ctx, reversePrefix+hashValue(userID), hashed, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return rawToken, nil
}

// Resolve maps a presented raw token back to its user ID.
func (s *Store) Resolve(ctx context.Context, rawToken string) (string, error) {
	userID, err := s.redis.Get(ctx, forwardPrefix+hashValue(rawToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return userID, nil
}

// Revoke deletes the user's current token pair. Revoking a user with no
// live token is a no-op.
func (s *Store) Revoke(ctx context.Context, userID string) error {
	reverseKey := reversePrefix + hashValue(userID)

	hashed, err := s.redis.Get(ctx, reverseKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := s.redis.Del(ctx, forwardPrefix+hashed, reverseKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// hashValue is the one-way digest applied to every stored value: SHA-256,
// URL-safe base64 without padding.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
