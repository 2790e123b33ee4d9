package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, ttl), mr
}

func TestIssueAndResolve(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	raw, err := store.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if raw == "" {
		t.Fatal("expected a raw token")
	}

	userID, err := store.Resolve(ctx, raw)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user ID %q", userID)
	}
}

func TestIssueRevokesPreviousToken(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	first, err := store.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	second, err := store.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh token")
	}

	if _, err := store.Resolve(ctx, first); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected first token to be revoked, got %v", err)
	}
	if _, err := store.Resolve(ctx, second); err != nil {
		t.Fatalf("second token must resolve: %v", err)
	}
}

func TestTokensAreIsolatedPerUser(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	aliceToken, _ := store.Issue(ctx, "user-alice")
	bobToken, _ := store.Issue(ctx, "user-bob")

	if userID, _ := store.Resolve(ctx, aliceToken); userID != "user-alice" {
		t.Fatalf("unexpected resolution %q", userID)
	}
	if userID, _ := store.Resolve(ctx, bobToken); userID != "user-bob" {
		t.Fatalf("unexpected resolution %q", userID)
	}

	if err := store.Revoke(ctx, "user-alice"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := store.Resolve(ctx, bobToken); err != nil {
		t.Fatalf("revoking one user must not touch another: %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	if _, err := store.Resolve(context.Background(), "never-issued"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Revoke(ctx, "user-1"); err != nil {
		t.Fatalf("Revoke without a token failed: %v", err)
	}

	raw, _ := store.Issue(ctx, "user-1")
	if err := store.Revoke(ctx, "user-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := store.Revoke(ctx, "user-1"); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
	if _, err := store.Resolve(ctx, raw); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
}

func TestTokensExpire(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	raw, _ := store.Issue(ctx, "user-1")

	mr.FastForward(time.Hour + time.Second)

	if _, err := store.Resolve(ctx, raw); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
	// Both entries expire together; reissuing afterwards works cleanly.
	if _, err := store.Issue(ctx, "user-1"); err != nil {
		t.Fatalf("Issue after expiry failed: %v", err)
	}
}

func TestRawTokenNeverStored(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	raw, _ := store.Issue(context.Background(), "user-1")

	for _, key := range mr.Keys() {
		if key == forwardPrefix+raw {
			t.Fatal("raw token used directly as a key")
		}
		value, err := mr.Get(key)
		if err == nil && value == raw {
			t.Fatalf("raw token stored as value under %q", key)
		}
	}
}

func TestStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	if _, err := store.Issue(context.Background(), "user-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := store.Resolve(context.Background(), "whatever"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
