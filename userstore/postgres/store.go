// Package postgres implements the credential store adapter on PostgreSQL
// via database/sql and the pgx stdlib driver. The engine only ever reads
// identity and password hashes through it during authentication; the
// profile mutators back the /users/me surface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	authgate "github.com/MrEthical07/authgate"
)

const uniqueViolation = "23505"

// Store implements authgate.UserProvider against a users table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle. The caller owns the handle's
// lifecycle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the pgx driver and verifies connectivity.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const userColumns = `id, first_name, last_name, email, password_hash, role, enabled, locale, theme, created_at, updated_at`

func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (authgate.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, identifier)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (authgate.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, userID)
	return scanUser(row)
}

func (s *Store) CreateUser(ctx context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, enabled, locale, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8, $9, $9)
		RETURNING `+userColumns+`
	`, uuid.NewString(), input.FirstName, input.LastName, input.Email, input.PasswordHash,
		string(input.Role), input.Locale, input.Theme, now)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return authgate.UserRecord{}, authgate.ErrIdentifierConflict
		}
		return authgate.UserRecord{}, err
	}
	return user, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, update authgate.ProfileUpdate) (authgate.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, update.FirstName, update.LastName, update.Email, time.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return authgate.UserRecord{}, authgate.ErrIdentifierConflict
		}
		return authgate.UserRecord{}, err
	}
	return user, nil
}

func (s *Store) UpdatePreferences(ctx context.Context, userID string, update authgate.PreferencesUpdate) (authgate.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET locale = $2, theme = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, update.Locale, update.Theme, time.Now().UTC())
	return scanUser(row)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, userID, newHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return authgate.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (authgate.UserRecord, error) {
	var (
		user authgate.UserRecord
		role string
	)
	err := row.Scan(
		&user.UserID, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &role, &user.Enabled, &user.Locale, &user.Theme,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authgate.UserRecord{}, authgate.ErrUserNotFound
		}
		return authgate.UserRecord{}, fmt.Errorf("scan user: %w", err)
	}
	user.Role = authgate.Role(role)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
