package authgate

import (
	"context"
	"time"
)

// Role is the authority scope carried in access tokens. Only two roles
// exist; the forward-auth gate admits RoleAdmin exclusively.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "USER"
	// RoleAdmin is the privileged role required by the forward-auth gate.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserRecord is the full account record returned by [UserProvider]. The
// engine treats it as immutable input during a request; only the credential
// store mutates it.
type UserRecord struct {
	UserID       string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Enabled      bool
	Locale       string
	Theme        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput carries the fields required to create an account.
// PasswordHash is already hashed by the engine; providers never see the
// plaintext password.
type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Locale       string
	Theme        string
}

// ProfileUpdate carries the mutable core-profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
}

// PreferencesUpdate carries the mutable preference fields.
type PreferencesUpdate struct {
	Locale string
	Theme  string
}

// UserProvider is the narrow credential-store interface callers implement to
// integrate authgate with their user database. The engine consumes identity
// and password hashes read-only during login; the profile mutators back the
// /users/me surface.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (UserRecord, error)
	UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// RegisterInput is the engine-level registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Locale    string
	Theme     string
}

// LoginResult is returned by Login, Register and Refresh. RefreshToken is
// the raw opaque value; only its hash is ever stored.
type LoginResult struct {
	User         UserRecord
	AccessToken  string
	RefreshToken string
}
