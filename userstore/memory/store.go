// Package memory is an in-memory UserProvider for tests, examples and
// single-node development runs. Not meant for production: state dies with
// the process.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	authgate "github.com/MrEthical07/authgate"
)

// Store implements authgate.UserProvider over a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]authgate.UserRecord
	byEmail map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		byID:    make(map[string]authgate.UserRecord),
		byEmail: make(map[string]string),
	}
}

// Seed inserts a prebuilt record, overwriting any existing entry with the
// same ID. Intended for tests and example binaries.
func (s *Store) Seed(user authgate.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.UserID] = user
	s.byEmail[normalize(user.Email)] = user.UserID
}

func (s *Store) GetUserByIdentifier(_ context.Context, identifier string) (authgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalize(identifier)]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (authgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[userID]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreateUser(_ context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalize(input.Email)
	if _, exists := s.byEmail[email]; exists {
		return authgate.UserRecord{}, authgate.ErrIdentifierConflict
	}

	now := time.Now().UTC()
	user := authgate.UserRecord{
		UserID:       uuid.NewString(),
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
	s.byID[user.UserID] = user
	s.byEmail[email] = user.UserID
	return user, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID string, update authgate.ProfileUpdate) (authgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}

	email := normalize(update.Email)
	if owner, exists := s.byEmail[email]; exists && owner != userID {
		return authgate.UserRecord{}, authgate.ErrIdentifierConflict
	}

	delete(s.byEmail, normalize(user.Email))
	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.Email = email
	user.UpdatedAt = time.Now().UTC()
	s.byID[userID] = user
	s.byEmail[email] = userID
	return user, nil
}

func (s *Store) UpdatePreferences(_ context.Context, userID string, update authgate.PreferencesUpdate) (authgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	user.Locale = update.Locale
	user.Theme = update.Theme
	user.UpdatedAt = time.Now().UTC()
	s.byID[userID] = user
	return user, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return authgate.ErrUserNotFound
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()
	s.byID[userID] = user
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
