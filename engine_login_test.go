package authgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginSuccess(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)

	result, err := engine.Login(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user email %q", result.User.Email)
	}
	if result.User.PasswordHash != "" {
		// LoginResult goes to callers; the hash must not ride along.
		t.Fatal("password hash leaked into login result")
	}
}

func TestLoginIdentifierIsCaseInsensitive(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)

	if _, err := engine.Login(context.Background(), "  ALICE@Example.COM ", "correct horse battery"); err != nil {
		t.Fatalf("Login with mixed-case identifier failed: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)

	_, err := engine.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	cfg := testConfig()
	engine, _, _ := newTestEngine(t, cfg)

	_, err := engine.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		// Unknown identifier and wrong password must be indistinguishable.
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	user := seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	up.disable(user.UserID)

	_, err := engine.Login(context.Background(), "alice@example.com", "correct horse battery")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginLockoutAfterMaxAttempts(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	ctx := context.Background()

	for i := 0; i < cfg.Security.MaxLoginAttempts; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Correct password must not break through an active lock.
	_, err := engine.Login(ctx, "alice@example.com", "correct horse battery")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	lockErr, ok := AsLockout(err)
	if !ok {
		t.Fatalf("expected LockoutError, got %T", err)
	}
	if lockErr.RetryAfter <= 0 || lockErr.RetryAfter > cfg.Security.LockoutDuration {
		t.Fatalf("unexpected RetryAfter %v", lockErr.RetryAfter)
	}
}

func TestLoginUnknownIdentifierAlsoLocks(t *testing.T) {
	cfg := testConfig()
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < cfg.Security.MaxLoginAttempts; i++ {
		if _, err := engine.Login(ctx, "ghost@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	_, err := engine.Login(ctx, "ghost@example.com", "wrong")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked for locked unknown identifier, got %v", err)
	}
}

func TestLoginLockExpires(t *testing.T) {
	cfg := testConfig()
	engine, mr, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	ctx := context.Background()

	for i := 0; i < cfg.Security.MaxLoginAttempts; i++ {
		_, _ = engine.Login(ctx, "alice@example.com", "wrong")
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct horse battery"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	mr.FastForward(cfg.Security.LockoutDuration + time.Second)

	if _, err := engine.Login(ctx, "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Login after lock expiry failed: %v", err)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	ctx := context.Background()

	for i := 0; i < cfg.Security.MaxLoginAttempts-1; i++ {
		_, _ = engine.Login(ctx, "alice@example.com", "wrong")
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Counter was cleared; the next run of failures starts from zero.
	for i := 0; i < cfg.Security.MaxLoginAttempts-1; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d after reset: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Login after sub-threshold failures failed: %v", err)
	}
}

func TestLoginFailsClosedWhenStoreDown(t *testing.T) {
	cfg := testConfig()
	engine, mr, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	mr.Close()

	_, err := engine.Login(context.Background(), "alice@example.com", "correct horse battery")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	cfg := testConfig()
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	result, err := engine.Register(ctx, RegisterInput{
		FirstName: "Bob",
		LastName:  "Builder",
		Email:     "Bob@Example.com",
		Password:  "a strong password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.Email != "bob@example.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
	if result.User.Role != RoleUser {
		t.Fatalf("new accounts must get RoleUser, got %q", result.User.Role)
	}
	if result.User.Locale != "en" || result.User.Theme != "light" {
		t.Fatalf("unexpected default preferences %q/%q", result.User.Locale, result.User.Theme)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("registration must issue a session")
	}

	if _, err := engine.Login(ctx, "bob@example.com", "a strong password"); err != nil {
		t.Fatalf("Login after Register failed: %v", err)
	}
}

func TestRegisterConflict(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)

	_, err := engine.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Alice",
		Email:     "ALICE@example.com",
		Password:  "another password",
	})
	if !errors.Is(err, ErrIdentifierConflict) {
		t.Fatalf("expected ErrIdentifierConflict, got %v", err)
	}
}

func TestLoginMetrics(t *testing.T) {
	cfg := testConfig()
	engine, _, up := newTestEngine(t, cfg)
	seedUser(t, cfg, up, "alice@example.com", "correct horse battery", RoleUser)
	ctx := context.Background()

	_, _ = engine.Login(ctx, "alice@example.com", "wrong")
	_, _ = engine.Login(ctx, "alice@example.com", "correct horse battery")

	snap := engine.MetricsSnapshot()
	if snap[MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap[MetricLoginFailure])
	}
	if snap[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap[MetricLoginSuccess])
	}
}
