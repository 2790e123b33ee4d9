package authgate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgate/password"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.AccessTTL = 5 * time.Minute
	cfg.Refresh.TTL = 2 * time.Hour
	cfg.Security.MaxLoginAttempts = 5
	cfg.Security.LockoutWindow = time.Minute
	cfg.Security.LockoutDuration = time.Minute
	// Cheapest parameters the hasher accepts, to keep tests fast.
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *miniredis.Miniredis, *mockUserProvider) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	up := newMockUserProvider()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(up).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, mr, up
}

func seedUser(t *testing.T, cfg Config, up *mockUserProvider, email, pass string, role Role) UserRecord {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("hasher init failed: %v", err)
	}
	hash, err := hasher.Hash(pass)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	now := time.Now().UTC()
	user := UserRecord{
		UserID:       "user-" + email,
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
		Locale:       "en",
		Theme:        "light",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	up.put(user)
	return user
}

// mockUserProvider is an in-test credential store.
type mockUserProvider struct {
	mu      sync.Mutex
	byID    map[string]UserRecord
	byEmail map[string]string
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{
		byID:    map[string]UserRecord{},
		byEmail: map[string]string{},
	}
}

func (m *mockUserProvider) put(user UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.UserID] = user
	m.byEmail[strings.ToLower(user.Email)] = user.UserID
}

func (m *mockUserProvider) GetUserByIdentifier(_ context.Context, identifier string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(identifier)]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *mockUserProvider) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserProvider) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(input.Email)
	if _, exists := m.byEmail[email]; exists {
		return UserRecord{}, ErrIdentifierConflict
	}
	now := time.Now().UTC()
	user := UserRecord{
		UserID:       "user-" + email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		Enabled:      true,
		Locale:       input.Locale,
		Theme:        input.Theme,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[user.UserID] = user
	m.byEmail[email] = user.UserID
	return user, nil
}

func (m *mockUserProvider) UpdateProfile(_ context.Context, userID string, update ProfileUpdate) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	email := strings.ToLower(update.Email)
	if owner, exists := m.byEmail[email]; exists && owner != userID {
		return UserRecord{}, ErrIdentifierConflict
	}
	delete(m.byEmail, strings.ToLower(user.Email))
	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.Email = email
	user.UpdatedAt = time.Now().UTC()
	m.byID[userID] = user
	m.byEmail[email] = userID
	return user, nil
}

func (m *mockUserProvider) UpdatePreferences(_ context.Context, userID string, update PreferencesUpdate) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	user.Locale = update.Locale
	user.Theme = update.Theme
	user.UpdatedAt = time.Now().UTC()
	m.byID[userID] = user
	return user, nil
}

func (m *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = newHash
	m.byID[userID] = user
	return nil
}

func (m *mockUserProvider) disable(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.byID[userID]
	user.Enabled = false
	m.byID[userID] = user
}
