package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/authgate/internal/rate"
)

// Login verifies credentials and issues a fresh access/refresh token pair.
//
// The lockout check runs before any credential-store lookup: a locked
// identifier is rejected without revealing whether an account exists. A
// failed password comparison records an attempt; a successful login fully
// resets the attempt state, then issues tokens. Store outages fail closed.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	identifier = normalizeIdentifier(identifier)
	if identifier == "" || pass == "" {
		return nil, ErrInvalidCredentials
	}

	if remaining, err := e.guard.Check(ctx, identifier); err != nil {
		if errors.Is(err, rate.ErrLocked) {
			e.metricInc(MetricLoginLocked)
			return nil, &LockoutError{RetryAfter: remaining}
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	user, err := e.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.recordFailure(ctx, identifier)
			e.metricInc(MetricLoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		e.log.Error().Err(err).Msg("stored password hash unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		e.recordFailure(ctx, identifier)
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	if err := e.guard.RecordSuccess(ctx, identifier); err != nil {
		// Not fatal: the counter expires on its own.
		e.log.Warn().Err(err).Msg("attempt reset failed")
	}

	result, err := e.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricLoginSuccess)
	return result, nil
}

// Register creates an account with role USER and then behaves exactly like
// a successful login, issuing both tokens.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	input.Email = normalizeIdentifier(input.Email)

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := e.users.CreateUser(ctx, CreateUserInput{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         RoleUser,
		Locale:       defaultString(input.Locale, "en"),
		Theme:        defaultString(input.Theme, "light"),
	})
	if err != nil {
		if errors.Is(err, ErrIdentifierConflict) {
			e.metricInc(MetricRegisterConflict)
			return nil, ErrIdentifierConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result, err := e.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricRegisterSuccess)
	return result, nil
}

func (e *Engine) issueTokens(ctx context.Context, user UserRecord) (*LoginResult, error) {
	access, err := e.jwtManager.CreateAccess(user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	rawRefresh, err := e.refreshStore.Issue(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The record is a copy; callers never need the hash.
	user.PasswordHash = ""
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: rawRefresh,
	}, nil
}

func (e *Engine) recordFailure(ctx context.Context, identifier string) {
	if err := e.guard.RecordFailure(ctx, identifier); err != nil {
		e.log.Warn().Err(err).Msg("attempt record failed")
	}
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
